package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// categories mirrors the marketplace's onboarding category picker.
var categories = []string{
	"Cafe", "Restaurant", "Bakery", "Fashion", "Beauty",
	"Books", "Crafts", "Music", "Fitness", "Home Goods",
}

// Counts controls how many rows of each kind SeedDev creates.
type Counts struct {
	Users  int
	Stores int
	Events int
	Popups int
}

// Seeder handles development database seeding.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev fills the development database with realistic marketplace data:
// users with category preferences, stores, ongoing and past events and
// pop-ups, and enough favorites to make popularity ranking interesting.
func (s *Seeder) SeedDev(counts Counts) error {
	logger.Log.Info("Seeding users", zap.Int("count", counts.Users))
	users, err := s.seedUsers(counts.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Seeding stores", zap.Int("count", counts.Stores))
	stores, err := s.seedStores(counts.Stores)
	if err != nil {
		return fmt.Errorf("failed to seed stores: %w", err)
	}

	logger.Log.Info("Seeding events", zap.Int("count", counts.Events))
	events, err := s.seedEvents(counts.Events)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	logger.Log.Info("Seeding pop-ups", zap.Int("count", counts.Popups))
	popups, err := s.seedPopups(counts.Popups)
	if err != nil {
		return fmt.Errorf("failed to seed pop-ups: %w", err)
	}

	logger.Log.Info("Seeding category preferences")
	if err := s.seedPreferences(users); err != nil {
		return fmt.Errorf("failed to seed preferences: %w", err)
	}

	logger.Log.Info("Seeding favorites")
	if err := s.seedFavorites(users, stores, events, popups); err != nil {
		return fmt.Errorf("failed to seed favorites: %w", err)
	}

	logger.Log.Info("Seeding complete")
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	// All dev users share one password so the hash is computed once.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashedStr := string(hashed)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:        fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Nickname:     gofakeit.Username(),
			PasswordHash: &hashedStr,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedStores(count int) ([]models.Store, error) {
	stores := make([]models.Store, 0, count)
	for i := 0; i < count; i++ {
		store := models.Store{
			Name:        gofakeit.Company(),
			Description: gofakeit.Sentence(12),
			Category:    categories[rand.Intn(len(categories))],
			Address:     gofakeit.Address().Address,
			ImageURL:    gofakeit.ImageURL(640, 480),
			LikeCount:   skewedLikeCount(),
		}
		if err := s.db.Create(&store).Error; err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func (s *Seeder) seedEvents(count int) ([]models.Event, error) {
	events := make([]models.Event, 0, count)
	for i := 0; i < count; i++ {
		start, end := randomDateWindow()
		event := models.Event{
			Name:      gofakeit.Company() + " " + gofakeit.HackerNoun() + " Week",
			Intro:     gofakeit.Sentence(10),
			Category:  categories[rand.Intn(len(categories))],
			Address:   gofakeit.Address().Address,
			ImageURL:  gofakeit.ImageURL(640, 480),
			StartDate: start,
			EndDate:   end,
			LikeCount: skewedLikeCount(),
		}
		if err := s.db.Create(&event).Error; err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *Seeder) seedPopups(count int) ([]models.Popup, error) {
	popups := make([]models.Popup, 0, count)
	for i := 0; i < count; i++ {
		start, end := randomDateWindow()
		popup := models.Popup{
			Name:      gofakeit.Company() + " Pop-up",
			Intro:     gofakeit.Sentence(10),
			Category:  categories[rand.Intn(len(categories))],
			Address:   gofakeit.Address().Address,
			ImageURL:  gofakeit.ImageURL(640, 480),
			StartDate: start,
			EndDate:   end,
			LikeCount: skewedLikeCount(),
		}
		if err := s.db.Create(&popup).Error; err != nil {
			return nil, err
		}
		popups = append(popups, popup)
	}
	return popups, nil
}

func (s *Seeder) seedPreferences(users []models.User) error {
	for _, user := range users {
		// 20% of users skip onboarding, exercising the generic cold-start path
		if rand.Float64() < 0.2 {
			continue
		}
		picked := rand.Perm(len(categories))[:1+rand.Intn(3)]
		for _, idx := range picked {
			pref := models.CategoryPreference{
				UserID:   user.ID,
				Category: categories[idx],
			}
			if err := s.db.Create(&pref).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedFavorites likes items for the seeded cohort and bumps the
// denormalized counters on top of the base counts (which stand in for
// likes from users outside the cohort).
func (s *Seeder) seedFavorites(users []models.User, stores []models.Store, events []models.Event, popups []models.Popup) error {
	for _, user := range users {
		likes := rand.Intn(12)
		for i := 0; i < likes; i++ {
			var fav models.Favorite
			fav.UserID = user.ID
			switch rand.Intn(3) {
			case 0:
				if len(stores) == 0 {
					continue
				}
				fav.ItemType = models.ItemTypeStore
				fav.ItemID = stores[rand.Intn(len(stores))].ID
			case 1:
				if len(events) == 0 {
					continue
				}
				fav.ItemType = models.ItemTypeEvent
				fav.ItemID = events[rand.Intn(len(events))].ID
			default:
				if len(popups) == 0 {
					continue
				}
				fav.ItemType = models.ItemTypePopup
				fav.ItemID = popups[rand.Intn(len(popups))].ID
			}

			res := s.db.Where(models.Favorite{
				UserID:   fav.UserID,
				ItemType: fav.ItemType,
				ItemID:   fav.ItemID,
			}).FirstOrCreate(&fav)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Duplicate pick; don't double-count
				continue
			}
			if err := s.bumpLikeCount(fav.ItemType, fav.ItemID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) bumpLikeCount(itemType models.ItemType, itemID int64) error {
	expr := gorm.Expr("like_count + 1")
	switch itemType {
	case models.ItemTypeStore:
		return s.db.Model(&models.Store{}).Where("id = ?", itemID).
			UpdateColumn("like_count", expr).Error
	case models.ItemTypeEvent:
		return s.db.Model(&models.Event{}).Where("id = ?", itemID).
			UpdateColumn("like_count", expr).Error
	case models.ItemTypePopup:
		return s.db.Model(&models.Popup{}).Where("id = ?", itemID).
			UpdateColumn("like_count", expr).Error
	}
	return fmt.Errorf("unknown item type %q", itemType)
}

// randomDateWindow returns a start/end pair; roughly 70% of windows cover
// today so seeded feeds have plenty of ongoing items, the rest are past.
func randomDateWindow() (time.Time, time.Time) {
	today := time.Now().Truncate(24 * time.Hour)
	if rand.Float64() < 0.7 {
		start := today.AddDate(0, 0, -rand.Intn(14))
		end := today.AddDate(0, 0, 1+rand.Intn(30))
		return start, end
	}
	end := today.AddDate(0, 0, -(1 + rand.Intn(60)))
	start := end.AddDate(0, 0, -(7 + rand.Intn(14)))
	return start, end
}

// skewedLikeCount produces a long-tail distribution: most items have few
// likes, a handful are popular.
func skewedLikeCount() int {
	if rand.Float64() < 0.1 {
		return 100 + rand.Intn(900)
	}
	return rand.Intn(50)
}
