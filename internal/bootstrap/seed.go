package bootstrap

import (
	"log"
	"os"

	"anoa.com/momentum/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.UserCounters{},
		&entity.Achievement{},
		&entity.AchievementBadge{},
		&entity.UserAchievement{},
		&entity.StreakRecord{},
		&entity.StreakDay{},
		&entity.RewardTransaction{},
		&entity.Badge{},
		&entity.UserBadge{},
		&entity.BadgeGift{},
		&entity.Goal{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Super administrator"},
		{Name: entity.RoleMember, Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@momentum.local"
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Printf("   Email: %s", email)

	return nil
}

// SeedBadges creates the giftable badge set. Costs stay inside the
// allowed gifting band.
func SeedBadges(db *gorm.DB) error {
	defaultBadges := []entity.Badge{
		{Name: "Star", Description: "A little recognition for a job well done", Icon: "⭐", Cost: 30},
		{Name: "High Five", Description: "You crushed it", Icon: "🙌", Cost: 35},
		{Name: "Rocket", Description: "To the moon", Icon: "🚀", Cost: 40},
		{Name: "Heart", Description: "Sent with love", Icon: "❤️", Cost: 45},
		{Name: "Trophy", Description: "Champion material", Icon: "🏆", Cost: 55},
		{Name: "Crown", Description: "Simply the best", Icon: "👑", Cost: 70},
	}

	for _, badge := range defaultBadges {
		var count int64
		if err := db.Model(&entity.Badge{}).
			Where("name = ?", badge.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&badge).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
