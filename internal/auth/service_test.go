package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&models.Organization{}, &models.User{}, &models.Coin{},
		&models.Strategy{}, &models.Trade{}, &models.BacktestTrade{},
	)
	require.NoError(t, err)

	return NewService(db, zap.NewNop(), "test-secret", time.Hour)
}

func TestSignupLoginVerify(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Email:            "trader@acme.test",
		Password:         "hunter22",
		FirstName:        "Ada",
		OrganizationName: "Acme Capital",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.OrganizationID)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	// Signup seeds the default catalogs for the new organization.
	var coinCount, strategyCount int64
	require.NoError(t, svc.db.Model(&models.Coin{}).Where("organization_id = ?", user.OrganizationID).Count(&coinCount).Error)
	require.NoError(t, svc.db.Model(&models.Strategy{}).Where("organization_id = ?", user.OrganizationID).Count(&strategyCount).Error)
	assert.NotZero(t, coinCount)
	assert.NotZero(t, strategyCount)

	token, logged, err := svc.Login(ctx, "trader@acme.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token)

	authCtx, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authCtx.User.ID)
	assert.Equal(t, "Acme Capital", authCtx.Organization.Name)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	in := SignupInput{Email: "trader@acme.test", Password: "pw", OrganizationName: "Acme"}
	_, err := svc.Signup(ctx, in)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "trader@acme.test", Password: "right", OrganizationName: "Acme"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "trader@acme.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@acme.test", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_BadTokens(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "trader@acme.test", Password: "pw", OrganizationName: "Acme"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "trader@acme.test", "pw")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(ctx, token+"tampered")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret is rejected.
	other := NewService(svc.db, zap.NewNop(), "other-secret", time.Hour)
	_, err = other.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Expiry(t *testing.T) {
	secret := []byte("s")
	token, err := signToken(secret, 7, time.Now().Add(time.Minute))
	require.NoError(t, err)

	claims, err := verifyToken(secret, token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	_, err = verifyToken(secret, token, time.Now().Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
