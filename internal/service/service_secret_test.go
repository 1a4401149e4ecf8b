package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-secret-keeper/internal/logger"
	"github.com/MKhiriev/go-secret-keeper/internal/mock"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
	"github.com/MKhiriev/go-secret-keeper/models"
)

func newTestSecretSvc(t *testing.T) (SecretService, *mock.MockSecretRepository, *mock.MockStatsRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	secrets := mock.NewMockSecretRepository(ctrl)
	stats := mock.NewMockStatsRepository(ctrl)
	return NewSecretService(secrets, stats, logger.Nop()), secrets, stats
}

func TestSecretService_CreateTextSecret(t *testing.T) {
	svc, secrets, _ := newTestSecretSvc(t)
	ctx := context.Background()

	secrets.EXPECT().Create(ctx, models.TextSecretPayload{Type: models.SecretTypeText, Data: "x"}).Return("id-1", nil)

	id, err := svc.CreateTextSecret(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
}

func TestSecretService_CreateTextSecret_StoreError(t *testing.T) {
	svc, secrets, _ := newTestSecretSvc(t)

	secrets.EXPECT().Create(gomock.Any(), gomock.Any()).Return("", store.ErrCommitingTransaction)

	_, err := svc.CreateTextSecret(context.Background(), "x")
	assert.ErrorIs(t, err, store.ErrCommitingTransaction)
}

func TestSecretService_FetchTextSecret(t *testing.T) {
	payload := models.NewTextSecret("x")

	tests := []struct {
		name    string
		id      string
		setup   func(secrets *mock.MockSecretRepository)
		want    models.TextSecretPayload
		wantErr error
	}{
		{
			name: "found",
			id:   "a",
			setup: func(secrets *mock.MockSecretRepository) {
				secrets.EXPECT().Fetch(gomock.Any(), "a").Return(payload, true, nil)
			},
			want: payload,
		},
		{
			name: "already read",
			id:   "a",
			setup: func(secrets *mock.MockSecretRepository) {
				secrets.EXPECT().Fetch(gomock.Any(), "a").Return(models.TextSecretPayload{}, false, nil)
			},
			wantErr: ErrSecretNotFound,
		},
		{
			name: "store failure",
			id:   "a",
			setup: func(secrets *mock.MockSecretRepository) {
				secrets.EXPECT().Fetch(gomock.Any(), "a").Return(models.TextSecretPayload{}, false, store.ErrReadingRecord)
			},
			wantErr: store.ErrReadingRecord,
		},
		{
			name:    "empty id",
			setup:   func(*mock.MockSecretRepository) {},
			wantErr: ErrValidationNoSecretID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, secrets, _ := newTestSecretSvc(t)
			tt.setup(secrets)

			got, err := svc.FetchTextSecret(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecretService_DeleteTextSecret(t *testing.T) {
	svc, secrets, _ := newTestSecretSvc(t)

	secrets.EXPECT().Delete(gomock.Any(), "a").Return(nil)
	require.NoError(t, svc.DeleteTextSecret(context.Background(), "a"))

	assert.ErrorIs(t, svc.DeleteTextSecret(context.Background(), ""), ErrValidationNoSecretID)
}

func TestSecretService_Stats(t *testing.T) {
	svc, _, stats := newTestSecretSvc(t)

	stats.EXPECT().Created(gomock.Any(), models.SecretTypeText).Return(uint64(18446744073709551615), nil)

	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", got)
}

func TestSecretService_StatsAll(t *testing.T) {
	svc, _, stats := newTestSecretSvc(t)
	want := models.SecretStats{Created: 3, Read: 2, Deleted: 1}

	stats.EXPECT().Counters(gomock.Any(), models.SecretTypeText).Return(want, nil)
	got, err := svc.StatsAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	boom := errors.New("boom")
	stats.EXPECT().Counters(gomock.Any(), models.SecretTypeText).Return(models.SecretStats{}, boom)
	_, err = svc.StatsAll(context.Background())
	assert.ErrorIs(t, err, boom)
}
