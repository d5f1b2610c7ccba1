package user

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/userhub/internal/user/db"
	"github.com/nao1215/userhub/pkg/event"
	"github.com/nao1215/userhub/pkg/middleware"
)

// recordAudit はアカウントに対する状態変更を監査イベントとして記録する。
// 監査記録の失敗で元の操作を失敗させてはならないため、エラーはログ出力に留める。
func (s *Server) recordAudit(ctx context.Context, userID string, eventType event.Type, data any) {
	version, err := s.queries.NextAuditVersion(ctx, userID)
	if err != nil {
		log.Printf("監査イベントのバージョン取得に失敗: user_id=%s, error=%v", userID, err)
		return
	}

	ev, err := event.New(userID, event.AggregateTypeUser, eventType, version, data)
	if err != nil {
		log.Printf("監査イベントの生成に失敗: user_id=%s, error=%v", userID, err)
		return
	}

	if err := s.queries.CreateAuditEvent(ctx, db.CreateAuditEventParams{
		ID:            ev.ID,
		AggregateID:   ev.AggregateID,
		AggregateType: string(ev.AggregateType),
		EventType:     string(ev.EventType),
		Data:          ev.Data,
		Version:       ev.Version,
		CreatedAt:     ev.CreatedAt,
	}); err != nil {
		log.Printf("監査イベントの保存に失敗: user_id=%s, error=%v", userID, err)
	}
}

// handleListAudit は認証済みユーザー自身の監査イベント一覧を返すハンドラを返す。
func (s *Server) handleListAudit() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.CurrentPrincipal(c)
		if !ok {
			respondError(c, ErrUserHaveToSignIn)
			return
		}

		records, err := s.queries.ListAuditEventsByAggregate(c.Request.Context(), p.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		events := make([]gin.H, 0, len(records))
		for _, r := range records {
			events = append(events, gin.H{
				"id":         r.ID,
				"event_type": r.EventType,
				"version":    r.Version,
				"created_at": r.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
