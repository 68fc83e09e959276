package handlers

import (
	"context"
	"net/http"
	"time"

	"remindme/internal/auth"
	dom "remindme/internal/domain"
	"remindme/internal/dto"
	"remindme/internal/events"
	"remindme/internal/feed"
	"remindme/internal/metrics"
	"remindme/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler streams a collection's derived feed over a websocket and
// pushes a fresh frame after every change.
type LiveHandler struct {
	reminders *service.ReminderService
	shopping  *service.ShoppingService
	broker    events.Broker
	logger    *zap.Logger
}

func NewLiveHandler(reminders *service.ReminderService, shopping *service.ShoppingService, broker events.Broker, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{reminders: reminders, shopping: shopping, broker: broker, logger: logger.Named("live")}
}

// liveFeed is the materialized view behind one stream.
type liveFeed interface {
	load(ctx context.Context) error
	apply(c events.Change) bool
	message(kind string, rev int64) dto.LiveMessage
}

type reminderFeed struct {
	svc    *service.ReminderService
	userID string
	view   *feed.View[dom.Reminder]
}

func (f *reminderFeed) load(ctx context.Context) error {
	list, err := f.svc.Snapshot(ctx, f.userID)
	if err != nil {
		return err
	}
	f.view.Load(list)
	return nil
}

func (f *reminderFeed) apply(c events.Change) bool { return feed.ApplyReminderChange(f.view, c) }

func (f *reminderFeed) message(kind string, rev int64) dto.LiveMessage {
	home := homeToResponse(feed.BuildHome(f.view.Docs()))
	return dto.LiveMessage{Type: kind, Collection: events.CollectionReminders, Rev: rev, Home: &home}
}

type shoppingFeed struct {
	svc    *service.ShoppingService
	userID string
	view   *feed.View[dom.ShoppingItem]
}

func (f *shoppingFeed) load(ctx context.Context) error {
	items, err := f.svc.Snapshot(ctx, f.userID)
	if err != nil {
		return err
	}
	f.view.Load(items)
	return nil
}

func (f *shoppingFeed) apply(c events.Change) bool { return feed.ApplyShoppingChange(f.view, c) }

func (f *shoppingFeed) message(kind string, rev int64) dto.LiveMessage {
	list := shoppingToResponse(feed.BuildShopping(f.view.Docs()))
	return dto.LiveMessage{Type: kind, Collection: events.CollectionShopping, Rev: rev, Shopping: &list}
}

func (h *LiveHandler) newFeed(collection, userID string) liveFeed {
	if collection == events.CollectionShopping {
		return &shoppingFeed{svc: h.shopping, userID: userID, view: feed.NewView[dom.ShoppingItem]()}
	}
	return &reminderFeed{svc: h.reminders, userID: userID, view: feed.NewView[dom.Reminder]()}
}

// Stream godoc
// @Summary      Live view of a collection
// @Description  Upgrades to a websocket. The first frame is a snapshot, later frames follow each change.
// @Tags         live
// @Produce      json
// @Security     CookieAuth
// @Param        collection  path  string  true  "reminders or shoppingList"
// @Success      101  {object}  dto.LiveMessage
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /live/{collection} [get]
func (h *LiveHandler) Stream(c *gin.Context) {
	collection := c.Param("collection")
	if !events.IsValidCollection(collection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection"})
		return
	}
	userID := auth.UserIDFromContext(c)
	log := h.logger.With(zap.String("user_id", userID), zap.String("collection", collection))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before the snapshot so no change falls between them; the view
	// drops anything the snapshot already covers. The snapshot comes from the
	// store, never the list cache.
	sub, err := h.broker.Subscribe(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Close()

	lf := h.newFeed(collection, userID)
	if err := lf.load(ctx); err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.LiveSubscriptions.WithLabelValues(collection).Inc()
	defer metrics.LiveSubscriptions.WithLabelValues(collection).Dec()
	log.Debug("live stream opened")
	defer log.Debug("live stream closed")

	conn.SetReadLimit(512)
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeFrame(conn, lf.message("snapshot", 0)); err != nil {
		log.Debug("write snapshot failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-sub.C():
			if !ok {
				return
			}
			if !lf.apply(ch) {
				continue
			}
			if err := writeFrame(conn, lf.message("change", ch.Rev)); err != nil {
				log.Debug("write change failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, msg dto.LiveMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
