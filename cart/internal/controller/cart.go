package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/internal/service"
	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/cart/pkg/request"
	"github.com/Alturino/framedarchive/cart/pkg/response"
	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/event"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/inflight"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/middleware"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/validate"
)

const (
	actionCartMutation = "cart-mutation"
	actionCartMerge    = "cart-merge"
	heartbeatInterval  = 25 * time.Second
)

type CartController struct {
	service    *service.CartService
	subscriber event.Subscriber
}

func AttachCartController(
	router *mux.Router,
	service *service.CartService,
	subscriber event.Subscriber,
	authenticator *middleware.Authenticator,
	guard *inflight.Guard,
) {
	controller := CartController{service: service, subscriber: subscriber}
	mutation := middleware.SingleFlight(guard, actionCartMutation)

	router.Handle(
		"/carts/merge",
		authenticator.RequireAuth(
			middleware.SingleFlight(guard, actionCartMerge)(http.HandlerFunc(controller.MergeCart)),
		),
	).Methods(http.MethodPost)

	carts := router.PathPrefix("/carts").Subrouter()
	carts.Use(authenticator.OptionalAuth)
	carts.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	carts.Handle("", mutation(http.HandlerFunc(controller.ReplaceCart))).Methods(http.MethodPut)
	carts.Handle("", mutation(http.HandlerFunc(controller.ClearCart))).Methods(http.MethodDelete)
	carts.HandleFunc("/events", controller.StreamEvents).Methods(http.MethodGet)
	carts.Handle("/items", mutation(http.HandlerFunc(controller.AddItem))).Methods(http.MethodPost)
	carts.Handle("/items/{itemId}", mutation(http.HandlerFunc(controller.UpdateItem))).
		Methods(http.MethodPatch)
	carts.Handle("/items/{itemId}", mutation(http.HandlerFunc(controller.RemoveItem))).
		Methods(http.MethodDelete)
}

func decodeRequest(r *http.Request, logger zerolog.Logger, dst interface{}) error {
	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.Get().StructCtx(r.Context(), dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w: %w", inErrors.ErrInvalidRequest, err)
	}
	logger.Trace().Msg("validated request body")
	return nil
}

func itemIDFromPath(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["itemId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed parsing itemId=%s with error=%w", raw, inErrors.ErrInvalidRequest)
	}
	return id, nil
}

func writeCart(c context.Context, w http.ResponseWriter, message string, items []model.CartItem) {
	inHttp.WriteSuccessResponse(c, w, message, map[string]interface{}{
		"cart": response.NewCart(items),
	})
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Str(log.KeyOwner, owner.Key()).
		Str(log.KeyProcess, "finding cart").
		Logger()

	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	items := t.service.Current(c, owner)
	logger.Info().Int(log.KeyCartItemsCount, len(items)).Msg("found cart")

	writeCart(c, w, "found cart", items)
}

func (t CartController) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ReplaceCart")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ReplaceCart").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	reqBody := request.ReplaceCart{}
	if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "replacing cart").Logger()
	logger.Info().Msg("replacing cart")
	c = logger.WithContext(c)
	items, err := t.service.Replace(c, owner, reqBody.Items)
	if err != nil {
		err = fmt.Errorf("failed replacing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("replaced cart")

	writeCart(c, w, "replaced cart", items)
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	reqBody := request.AddCartItem{}
	if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	items, err := t.service.AddItem(c, owner, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("added cart item")

	writeCart(c, w, "added cart item", items)
}

func (t CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateItem").
		Str(log.KeyOwner, owner.Key()).
		Any(log.KeyPathValues, mux.Vars(r)).
		Logger()

	itemID, err := itemIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Int64(log.KeyCartItemID, itemID).Logger()

	reqBody := request.UpdateCartItem{}
	if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Info().Msg("updating cart item")
	c = logger.WithContext(c)
	items, err := t.service.UpdateItem(c, owner, itemID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating cart item id=%d with error=%w", itemID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated cart item")

	writeCart(c, w, "updated cart item", items)
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeyOwner, owner.Key()).
		Any(log.KeyPathValues, mux.Vars(r)).
		Logger()

	itemID, err := itemIDFromPath(r)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Int64(log.KeyCartItemID, itemID).Str(log.KeyProcess, "removing cart item").Logger()

	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	items, err := t.service.RemoveItem(c, owner, itemID)
	if err != nil {
		err = fmt.Errorf("failed removing cart item id=%d with error=%w", itemID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed cart item")

	writeCart(c, w, "removed cart item", items)
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Str(log.KeyOwner, owner.Key()).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := t.service.Clear(c, owner); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("cleared cart")

	writeCart(c, w, "cleared cart", []model.CartItem{})
}

func (t CartController) MergeCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController MergeCart")
	defer span.End()

	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController MergeCart").
		Str(log.KeyUserID, owner.UserID).
		Str(log.KeyGuestSession, owner.GuestSession).
		Logger()

	reqBody := request.MergeCart{}
	if r.ContentLength != 0 {
		if err := decodeRequest(r.WithContext(c), logger, &reqBody); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}
	}

	logger = logger.With().Str(log.KeyProcess, "merging cart").Logger()
	logger.Info().Msg("merging cart")
	c = logger.WithContext(c)
	items, err := t.service.Merge(c, owner, reqBody.Items, reqBody.MergeToken)
	if err != nil {
		err = fmt.Errorf("failed merging cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyCartItemsMerged, len(items)).Msg("merged cart")

	writeCart(c, w, "merged cart", items)
}

// StreamEvents writes cartUpdated events of the owner as server-sent events until the
// client goes away.
func (t CartController) StreamEvents(w http.ResponseWriter, r *http.Request) {
	c := r.Context()
	owner := auth.OwnerFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController StreamEvents").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	events, cancel, err := t.subscriber.Subscribe(c, owner.Key())
	if err != nil {
		err = fmt.Errorf("failed subscribing cart events with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_EVENT_STREAM)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	write := func(evt event.CartUpdated) error {
		payload, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: cartUpdated\ndata: %s\n\n", payload); err != nil {
			return err
		}
		return rc.Flush()
	}

	current := t.service.Current(c, owner)
	if err := write(event.CartUpdated{Owner: owner.Key(), Count: model.CountItems(current), At: time.Now()}); err != nil {
		logger.Warn().Err(err).Msg("failed writing initial cart event")
		return
	}
	logger.Info().Msg("streaming cart events")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("client closed cart event stream")
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := write(evt); err != nil {
				logger.Warn().Err(err).Msg("failed writing cart event")
				return
			}
		}
	}
}
