package recipient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"JetScheduler/internal/datasource"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/store"
)

type stubSource struct {
	got  models.TableReference
	list []string
	err  error
}

func (s *stubSource) ResolveEmails(_ context.Context, t models.TableReference) ([]string, error) {
	s.got = t
	return s.list, s.err
}

func TestService_SetManual(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), datasource.DefaultFixture(), zap.NewNop())

	rc, err := svc.SetManual(ctx, "cfg", []string{"a@b.com", "c@d.org"})
	require.NoError(t, err)
	assert.Equal(t, models.RecipientManual, rc.Type)
	assert.Equal(t, "cfg", rc.ID)
	assert.Nil(t, rc.TableReference)

	got, err := svc.Resolve(ctx, "cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.com", "c@d.org"}, got)

	rc, err = svc.SetManual(ctx, "cfg", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, rc.ManualEmails)

	got, err = svc.Resolve(ctx, "cfg")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_SetManualRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), datasource.DefaultFixture(), zap.NewNop())

	_, err := svc.SetManual(ctx, "cfg", []string{"ok@x.com"})
	require.NoError(t, err)

	_, err = svc.SetManual(ctx, "cfg", []string{"a@b.com", "bad", "x@y", "good@z.io"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Invalid email format: bad, x@y", err.Error())

	// previous value kept
	got, err := svc.Resolve(ctx, "cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok@x.com"}, got)
}

func TestService_SetDatalake(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{list: []string{"x@y.com"}}
	svc := NewService(store.NewMemory(), src, zap.NewNop())

	ref := models.TableReference{Database: "users", Table: "subscribers", EmailColumn: "email"}
	rc, err := svc.SetDatalake(ctx, "cfg", ref)
	require.NoError(t, err)
	assert.Equal(t, models.RecipientDatalake, rc.Type)
	require.NotNil(t, rc.TableReference)
	assert.Equal(t, ref, *rc.TableReference)
	assert.Nil(t, rc.ManualEmails)

	got, err := svc.Resolve(ctx, "cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"x@y.com"}, got)
	assert.Equal(t, ref, src.got)

	_, err = svc.SetDatalake(ctx, "cfg", models.TableReference{Database: "users", Table: "subscribers"})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Email column must be specified for datalake recipients", err.Error())
}

func TestService_ResolveWithFixture(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), datasource.DefaultFixture(), zap.NewNop())

	_, err := svc.SetDatalake(ctx, "cfg", models.TableReference{Database: "users", Table: "subscribers", EmailColumn: "email"})
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, "cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"user1@example.com", "user2@example.com"}, got)
}

func TestService_ResolveErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("timeout")
	svc := NewService(store.NewMemory(), &stubSource{err: boom}, zap.NewNop())

	_, err := svc.Resolve(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Recipient config not found: missing", err.Error())

	_, err = svc.SetDatalake(ctx, "cfg", models.TableReference{Database: "d", Table: "t", EmailColumn: "e"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, "cfg")
	assert.ErrorIs(t, err, boom)
}

func TestService_ImportCSV(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), datasource.DefaultFixture(), zap.NewNop())

	rc, err := svc.ImportCSV(ctx, "cfg", strings.NewReader("Name,Email\nAnn,ann@x.com\nBob,bob@y.org\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann@x.com", "bob@y.org"}, rc.ManualEmails)

	_, err = svc.ImportCSV(ctx, "cfg", strings.NewReader("Name\nAnn\n"), 0)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.ImportCSV(ctx, "cfg", strings.NewReader("Email\nnot-an-address\n"), 0)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Invalid email format: not-an-address", err.Error())
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), datasource.DefaultFixture(), zap.NewNop())

	_, err := svc.SetManual(ctx, "cfg", []string{"a@b.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "cfg"))
	_, err = svc.Get(ctx, "cfg")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, "cfg"))
}
