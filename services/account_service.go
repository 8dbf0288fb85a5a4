package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"milk-backend/models"
	"milk-backend/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minPasswordLength  = 4
	maxMilkIDAttempts  = 20
	DefaultDisplayName = "Użytkownik"
)

var errMilkIDTaken = errors.New("milk id taken")

// AccountService handles registration, login and profiles.
type AccountService struct {
	db        *gorm.DB
	tokens    *utils.TokenIssuer
	log       logrus.FieldLogger
	newMilkID func() string
}

func NewAccountService(db *gorm.DB, tokens *utils.TokenIssuer, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		db:        db,
		tokens:    tokens,
		log:       log.WithField("service", "accounts"),
		newMilkID: randomMilkID,
	}
}

// randomMilkID returns a 6-digit id in [100000, 999999].
func randomMilkID() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

type RegisterInput struct {
	Email    string
	Password string
	Phone    string
	FullName string
}

// Session is a signed token for an account.
type Session struct {
	Token   string
	Account *models.Account
}

// Register creates an account and its empty ledger.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := utils.NormalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)
	if email == "" {
		return nil, invalid("Brak email")
	}
	if password != "" && len(password) < minPasswordLength {
		return nil, invalid("Hasło za krótkie")
	}

	exists, err := s.emailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(ErrDuplicateAccount, "Konto już istnieje")
	}

	var hash string
	if password != "" {
		if hash, err = utils.HashPassword(password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	acc, err := s.provision(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		FullName:     strings.TrimSpace(in.FullName),
	})
	if err != nil {
		return nil, err
	}
	return s.session(acc)
}

// Login authenticates email and password. An unknown email is provisioned
// as a passwordless account on the spot, with the same guarantees as
// Register; concurrent first logins resolve to a single account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" {
		return nil, invalid("Brak email")
	}

	acc, err := s.findByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		acc, err = s.provision(ctx, &models.Account{Email: email})
		if errors.Is(err, ErrDuplicateAccount) {
			acc, err = s.findByEmail(ctx, email)
		}
		if err == nil {
			s.log.WithField("milkId", acc.MilkID).Info("account provisioned on login")
		}
	}
	if err != nil {
		return nil, err
	}

	if acc.HasPassword() {
		if password == "" {
			return nil, newError(ErrMissingPassword, "Wymagane hasło")
		}
		if !utils.CheckPasswordHash(password, acc.PasswordHash) {
			return nil, newError(ErrInvalidCredentials, "Złe hasło")
		}
	}
	return s.session(acc)
}

// Profile is an account with its authoritative points balance.
type Profile struct {
	Account *models.Account
	Points  int64
}

// Profile loads the account with its histories. Points come from the ledger;
// an account whose ledger row is missing has 0 points.
func (s *AccountService) Profile(ctx context.Context, email string) (*Profile, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).
		Preload("PointsHistory", func(db *gorm.DB) *gorm.DB { return db.Order("ledger_entry_id DESC") }).
		Preload("OrdersHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id DESC") }).
		Preload("ReservationsHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id DESC") }).
		Where("email = ?", utils.NormalizeEmail(email)).
		Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Nie znaleziono")
	}
	if err != nil {
		return nil, err
	}

	var ledger models.Ledger
	err = s.db.WithContext(ctx).Where("milk_id = ?", acc.MilkID).Take(&ledger).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Profile{Account: &acc}, nil
	case err != nil:
		return nil, err
	}
	return &Profile{Account: &acc, Points: ledger.Points}, nil
}

// UpdateProfile overwrites the name and phone of the account.
func (s *AccountService) UpdateProfile(ctx context.Context, email, fullName, phone string) (*models.Account, error) {
	email = utils.NormalizeEmail(email)
	res := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"full_name": strings.TrimSpace(fullName),
			"phone":     strings.TrimSpace(phone),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, newError(ErrNotFound, "Nie znaleziono")
	}
	return s.findByEmail(ctx, email)
}

// provision inserts acc and a linked zero-balance ledger in one transaction
// under a freshly drawn MilkID.
func (s *AccountService) provision(ctx context.Context, acc *models.Account) (*models.Account, error) {
	for attempt := 0; attempt < maxMilkIDAttempts; attempt++ {
		candidate := *acc
		candidate.MilkID = s.newMilkID()

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			taken, err := milkIDTaken(tx, candidate.MilkID)
			if err != nil {
				return err
			}
			if taken {
				return errMilkIDTaken
			}
			if err := tx.Create(&candidate).Error; err != nil {
				return err
			}
			return tx.Create(&models.Ledger{MilkID: candidate.MilkID, LinkedEmail: candidate.Email}).Error
		})

		switch {
		case err == nil:
			s.recordLegacyUser(ctx, candidate.Email)
			return &candidate, nil
		case errors.Is(err, errMilkIDTaken):
			continue
		case errors.Is(err, gorm.ErrDuplicatedKey):
			exists, lookupErr := s.emailExists(ctx, candidate.Email)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if exists {
				return nil, newError(ErrDuplicateAccount, "Konto już istnieje")
			}
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("no free MilkID after %d attempts", maxMilkIDAttempts)
}

func milkIDTaken(tx *gorm.DB, milkID string) (bool, error) {
	var accounts, ledgers int64
	if err := tx.Model(&models.Account{}).Where("milk_id = ?", milkID).Count(&accounts).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&models.Ledger{}).Where("milk_id = ?", milkID).Count(&ledgers).Error; err != nil {
		return false, err
	}
	return accounts+ledgers > 0, nil
}

// recordLegacyUser keeps the old "users" email list populated.
func (s *AccountService) recordLegacyUser(ctx context.Context, email string) {
	if err := s.db.WithContext(ctx).Create(&models.LegacyUser{Email: email}).Error; err != nil {
		s.log.WithError(err).Warn("legacy user insert failed")
	}
}

func (s *AccountService) emailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (s *AccountService) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acc models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Nie znaleziono")
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *AccountService) session(acc *models.Account) (*Session, error) {
	token, err := s.tokens.Generate(acc.Email, acc.ID.String(), acc.MilkID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, Account: acc}, nil
}
