package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/repositories"
	"github.com/Dosada05/knockout-arena/storage"
)

// Hub — то, что сервисам нужно от websocket-хаба: рассылка событий после
// зафиксированной мутации и признак присутствия для users-list.
type Hub interface {
	BroadcastEvent(eventType string, payload interface{})
	Online(username string) bool
}

const snapshotArchiveKey = "snapshots/latest.json"

// persistState сохраняет снапшот после мутации. Ошибки персистентности
// логируются, но команду не отменяют: мутация уже зафиксирована, а
// следующая успешная запись перекроет пропущенную.
func persistState(
	ctx context.Context,
	snapshots repositories.SnapshotRepository,
	archive storage.FileUploader,
	snap *models.Snapshot,
	logger *slog.Logger,
) {
	if snapshots != nil {
		if err := snapshots.Save(ctx, snap); err != nil {
			logger.Error("failed to persist snapshot", slog.Any("error", err))
		}
	}
	if archive != nil {
		data, err := json.Marshal(snap)
		if err != nil {
			logger.Error("failed to marshal snapshot for archive", slog.Any("error", err))
			return
		}
		if _, err := archive.Upload(ctx, snapshotArchiveKey, "application/json", bytes.NewReader(data)); err != nil {
			logger.Error("failed to archive snapshot", slog.Any("error", err))
		}
	}
}

// userSummaries строит публичный users-list из снапшота, отмечая
// подключённых через хаб.
func userSummaries(users map[string]*models.User, hub Hub) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for username, user := range users {
		out = append(out, models.UserSummary{
			Username: username,
			Balance:  user.Balance,
			IsOnline: hub.Online(username),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
