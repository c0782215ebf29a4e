package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/internal/integrity"
	"github.com/Alturino/framedarchive/cart/internal/repository"
	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/cart/pkg/request"
	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/event"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/product/pkg/pricing"
)

type CartService struct {
	store     repository.CartStore
	guest     *integrity.SecureStore
	catalog   *pricing.Catalog
	publisher event.Publisher
	now       func() time.Time
}

func NewCartService(
	store repository.CartStore,
	guest *integrity.SecureStore,
	catalog *pricing.Catalog,
	publisher event.Publisher,
) *CartService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &CartService{
		store:     store,
		guest:     guest,
		catalog:   catalog,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetCart returns the stored cart of userID. Any failure degrades to an empty cart.
func (svc *CartService) GetCart(c context.Context, userID string) []model.CartItem {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Trace().Msg("finding cart")
	items, found, err := svc.store.FindCart(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return []model.CartItem{}
	}
	if !found || items == nil {
		logger.Trace().Msg("cart not found")
		return []model.CartItem{}
	}
	logger.Trace().Int(log.KeyCartItemsCount, len(items)).Msg("found cart")
	return items
}

// UpdateCart overwrites the stored cart of userID. Concurrent writers race and the last
// one wins.
func (svc *CartService) UpdateCart(c context.Context, userID string, cart []model.CartItem) bool {
	c, span := otel.Tracer.Start(c, "CartService UpdateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateCart").
		Str(log.KeyUserID, userID).
		Int(log.KeyCartItemsCount, len(cart)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Trace().Msg("saving cart")
	if err := svc.store.SaveCart(c, userID, cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false
	}
	logger.Trace().Msg("saved cart")

	svc.notify(c, auth.Owner{UserID: userID}, cart)
	return true
}

// MergeCartOnLogin reconciles a guest cart into the cart of userID. mergeToken identifies
// the guest cart being merged; merging the same token again returns the stored cart
// unchanged.
func (svc *CartService) MergeCartOnLogin(
	c context.Context,
	userID string,
	localCart []model.CartItem,
	mergeToken string,
) ([]model.CartItem, error) {
	merged, _, err := svc.mergeCart(c, userID, localCart, mergeToken)
	return merged, err
}

func (svc *CartService) mergeCart(
	c context.Context,
	userID string,
	localCart []model.CartItem,
	mergeToken string,
) ([]model.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "CartService MergeCartOnLogin")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService MergeCartOnLogin").
		Str(log.KeyUserID, userID).
		Str(log.KeyMergeToken, mergeToken).
		Int(log.KeyCartItemsCount, len(localCart)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "merging cart").Logger()
	logger.Info().Msg("merging cart")
	merged, applied, err := svc.store.MergeCart(
		c,
		userID,
		mergeToken,
		func(stored []model.CartItem, found bool) []model.CartItem {
			return MergeCarts(stored, found, localCart)
		},
	)
	if err != nil {
		err = fmt.Errorf("failed merging cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}
	if merged == nil {
		merged = []model.CartItem{}
	}
	logger = logger.With().Int(log.KeyCartItemsMerged, len(merged)).Bool("applied", applied).Logger()
	logger.Info().Msg("merged cart")

	if applied {
		svc.notify(c, auth.Owner{UserID: userID}, merged)
	}
	return merged, applied, nil
}

// MergeToken names one merge attempt of a guest cart. It changes with every write to the
// guest cart, so a replay of the same cart is recognised while items added after an
// earlier merge are merged again.
func MergeToken(session string, revision string, local []model.CartItem) string {
	if session == "" && len(local) == 0 {
		return ""
	}
	payload, err := json.Marshal(local)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256([]byte(session + "\n" + revision + "\n" + string(payload)))
	return "merge:" + hex.EncodeToString(sum[:])
}

func containsAll(merged []model.CartItem, items []model.CartItem) bool {
	for _, item := range items {
		found := false
		for _, line := range merged {
			if line.SameConfiguration(item) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Current returns the cart of owner, read from the guest session or the user record.
func (svc *CartService) Current(c context.Context, owner auth.Owner) []model.CartItem {
	if owner.IsGuest() {
		return svc.guest.Load(c, owner.GuestSession)
	}
	return svc.GetCart(c, owner.UserID)
}

func (svc *CartService) Replace(
	c context.Context,
	owner auth.Owner,
	items []model.CartItem,
) ([]model.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService Replace")
	defer span.End()

	validated := integrity.ValidateCartItems(c, items)
	if err := svc.save(c, owner, validated); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	return validated, nil
}

func (svc *CartService) AddItem(
	c context.Context,
	owner auth.Owner,
	param request.AddCartItem,
) ([]model.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyOwner, owner.Key()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "pricing cart item").Logger()
	logger.Trace().Msg("pricing cart item")
	basePrice, err := svc.catalog.Price(param.PrintType, param.Variant, param.Size)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger = logger.With().Stringer(log.KeyBasePrice, basePrice).Logger()
	logger.Trace().Msg("priced cart item")

	current := svc.Current(c, owner)
	id := param.ID
	if id == 0 {
		id = svc.now().UnixMilli()
	}
	for indexOf(current, id) >= 0 {
		id++
	}
	quantity := param.Quantity
	if quantity == 0 {
		quantity = 1
	}
	item := integrity.ValidateCartItem(c, model.CartItem{
		ID:        id,
		Name:      strings.TrimSpace(param.Name),
		BasePrice: basePrice,
		Price:     basePrice,
		Quantity:  quantity,
		PrintType: strings.TrimSpace(param.PrintType),
		Variant:   strings.TrimSpace(param.Variant),
		Size:      strings.TrimSpace(param.Size),
		Image:     param.Image,
	})
	logger = logger.With().Int64(log.KeyCartItemID, item.ID).Logger()

	items := append(current, item)
	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	if err := svc.save(c, owner, items); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("added cart item")
	return items, nil
}

func (svc *CartService) UpdateItem(
	c context.Context,
	owner auth.Owner,
	itemID int64,
	param request.UpdateCartItem,
) ([]model.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyOwner, owner.Key()).
		Int64(log.KeyCartItemID, itemID).
		Logger()

	items := svc.Current(c, owner)
	idx := indexOf(items, itemID)
	if idx < 0 {
		err := fmt.Errorf("failed finding cart item id=%d with error=%w", itemID, inErrors.ErrCartItemNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	item := items[idx]
	reprice := false
	if param.PrintType != nil {
		item.PrintType, reprice = strings.TrimSpace(*param.PrintType), true
	}
	if param.Variant != nil {
		item.Variant, reprice = strings.TrimSpace(*param.Variant), true
	}
	if param.Size != nil {
		item.Size, reprice = strings.TrimSpace(*param.Size), true
	}
	if param.Quantity != nil {
		item.Quantity = *param.Quantity
	}
	if reprice {
		logger = logger.With().Str(log.KeyProcess, "repricing cart item").Logger()
		basePrice, err := svc.catalog.Price(item.PrintType, item.Variant, item.Size)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		item.BasePrice, item.Price = basePrice, basePrice
	}
	items[idx] = integrity.ValidateCartItem(c, item)

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	if err := svc.save(c, owner, items); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("updated cart item")
	return items, nil
}

func (svc *CartService) RemoveItem(
	c context.Context,
	owner auth.Owner,
	itemID int64,
) ([]model.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	items := svc.Current(c, owner)
	idx := indexOf(items, itemID)
	if idx < 0 {
		err := fmt.Errorf("failed finding cart item id=%d with error=%w", itemID, inErrors.ErrCartItemNotFound)
		inErrors.HandleError(err, span)
		return nil, err
	}
	items = append(items[:idx], items[idx+1:]...)
	if err := svc.save(c, owner, items); err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	return items, nil
}

func (svc *CartService) Clear(c context.Context, owner auth.Owner) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	if owner.IsGuest() {
		if err := svc.guest.Clear(c, owner.GuestSession); err != nil {
			inErrors.HandleError(err, span)
			return err
		}
		return nil
	}
	if err := svc.save(c, owner, []model.CartItem{}); err != nil {
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}

// Merge moves the guest cart of owner, plus any items sent by the client, into the
// signed-in cart. mergeToken defaults to one derived from the guest cart revision and
// the merged items. The guest cart is cleared only once the signed-in cart holds it.
func (svc *CartService) Merge(
	c context.Context,
	owner auth.Owner,
	local []model.CartItem,
	mergeToken string,
) ([]model.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService Merge")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Merge").
		Str(log.KeyUserID, owner.UserID).
		Str(log.KeyGuestSession, owner.GuestSession).
		Logger()

	if owner.IsGuest() {
		err := fmt.Errorf("failed merging cart with error=%w", inErrors.ErrEmptyAuth)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	var (
		guestCart []model.CartItem
		revision  string
	)
	if owner.GuestSession != "" {
		guestCart, revision = svc.guest.Snapshot(c, owner.GuestSession)
	}
	localCart := append(guestCart, integrity.ValidateCartItems(c, local)...)
	if mergeToken == "" {
		mergeToken = MergeToken(owner.GuestSession, revision, localCart)
	}

	merged, applied, err := svc.mergeCart(c, owner.UserID, localCart, mergeToken)
	if err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}

	if owner.GuestSession != "" && len(guestCart) > 0 {
		logger = logger.With().Str(log.KeyProcess, "clearing guest cart").Bool("applied", applied).Logger()
		if !applied && !containsAll(merged, guestCart) {
			logger.Warn().Msg("merge token already used, keeping guest cart")
			return merged, nil
		}
		if err := svc.guest.Clear(c, owner.GuestSession); err != nil {
			logger.Warn().Err(err).Msg("failed clearing guest cart after merge")
		}
	}
	return merged, nil
}

func (svc *CartService) save(c context.Context, owner auth.Owner, items []model.CartItem) error {
	if owner.IsGuest() {
		if err := svc.guest.Save(c, owner.GuestSession, items); err != nil {
			return fmt.Errorf("failed saving guest cart with error=%w: %w", inErrors.ErrCartNotSaved, err)
		}
		return nil
	}
	if !svc.UpdateCart(c, owner.UserID, items) {
		return fmt.Errorf("failed saving cart with error=%w", inErrors.ErrCartNotSaved)
	}
	return nil
}

func (svc *CartService) notify(c context.Context, owner auth.Owner, items []model.CartItem) {
	err := svc.publisher.Publish(c, event.CartUpdated{
		Owner: owner.Key(),
		Count: model.CountItems(items),
		At:    svc.now(),
	})
	if err != nil {
		zerolog.Ctx(c).Warn().Err(err).Str(log.KeyOwner, owner.Key()).Msg("failed publishing cart updated event")
	}
}

func indexOf(items []model.CartItem, id int64) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
