package integrity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/auth"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/event"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/metrics"
	"github.com/Alturino/framedarchive/internal/otel"
)

const (
	CartKey        = "cart"
	CurrentVersion = 2
)

type Format string

const (
	FormatEmpty   Format = "empty"
	FormatV0      Format = "v0"
	FormatV1      Format = "v1"
	FormatV2      Format = "v2"
	FormatFuture  Format = "future"
	FormatCorrupt Format = "corrupt"
)

type envelope struct {
	Version  int              `json:"version"`
	Revision string           `json:"revision,omitempty"`
	Items    []model.CartItem `json:"items"`
}

// Encode writes the current envelope format under a fresh revision.
func Encode(items []model.CartItem) (string, error) {
	blob, _, err := encode(items)
	return blob, err
}

func encode(items []model.CartItem) (blob string, revision string, err error) {
	if items == nil {
		items = []model.CartItem{}
	}
	revision = uuid.NewString()
	payload, err := json.Marshal(envelope{Version: CurrentVersion, Revision: revision, Items: items})
	if err != nil {
		return "", "", fmt.Errorf("failed marshaling cart envelope with error=%w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), revision, nil
}

// Decode classifies raw by its shape. Items are returned as stored, not validated.
//
//	""                          empty
//	base64({"version":2,...})   v2
//	base64({"version":>2,...})  future
//	base64([...])               v1
//	[...]                       v0
func Decode(raw string) ([]model.CartItem, Format) {
	items, format, _ := decode(raw)
	return items, format
}

func decode(raw string) ([]model.CartItem, Format, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, FormatEmpty, ""
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		if !strings.HasPrefix(raw, "[") {
			return nil, FormatCorrupt, ""
		}
		items := []model.CartItem{}
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, FormatCorrupt, ""
		}
		return items, FormatV0, ""
	}

	decoded = bytes.TrimSpace(decoded)
	switch {
	case bytes.HasPrefix(decoded, []byte("[")):
		items := []model.CartItem{}
		if err := json.Unmarshal(decoded, &items); err != nil {
			return nil, FormatCorrupt, ""
		}
		return items, FormatV1, ""
	case bytes.HasPrefix(decoded, []byte("{")):
		header := struct {
			Version  int             `json:"version"`
			Revision string          `json:"revision"`
			Items    json.RawMessage `json:"items"`
		}{}
		if err := json.Unmarshal(decoded, &header); err != nil {
			return nil, FormatCorrupt, ""
		}
		if header.Version > CurrentVersion {
			return nil, FormatFuture, ""
		}
		if header.Version != CurrentVersion {
			return nil, FormatCorrupt, ""
		}
		items := []model.CartItem{}
		if len(header.Items) > 0 && string(header.Items) != "null" {
			if err := json.Unmarshal(header.Items, &items); err != nil {
				return nil, FormatCorrupt, ""
			}
		}
		return items, FormatV2, header.Revision
	default:
		return nil, FormatCorrupt, ""
	}
}

// SecureStore keeps the guest cart in session storage. The blob is encoded, not
// encrypted; every read is re-validated.
type SecureStore struct {
	storage   Storage
	publisher event.Publisher
	now       func() time.Time
}

func NewSecureStore(storage Storage, publisher event.Publisher) *SecureStore {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &SecureStore{storage: storage, publisher: publisher, now: time.Now}
}

func (s *SecureStore) Save(c context.Context, session string, items []model.CartItem) error {
	c, span := otel.Tracer.Start(c, "SecureStore Save")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SecureStore Save").
		Str(log.KeyGuestSession, session).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating cart items").Logger()
	logger.Trace().Msg("validating cart items")
	validated := ValidateCartItems(c, items)
	logger.Trace().Msg("validated cart items")

	_, err := s.write(c, session, validated)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	s.notify(c, session, validated)
	return nil
}

// Load never fails; unreadable carts come back empty.
func (s *SecureStore) Load(c context.Context, session string) []model.CartItem {
	items, _ := s.Snapshot(c, session)
	return items
}

// Snapshot is Load plus the revision of the stored blob. Every write gets a new
// revision; an empty or unreadable cart has none.
func (s *SecureStore) Snapshot(c context.Context, session string) ([]model.CartItem, string) {
	c, span := otel.Tracer.Start(c, "SecureStore Snapshot")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SecureStore Load").
		Str(log.KeyGuestSession, session).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading cart blob").Logger()
	logger.Trace().Msg("reading cart blob")
	raw, err := s.storage.Get(c, session, CartKey)
	if err != nil {
		err = fmt.Errorf("failed reading cart blob with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return []model.CartItem{}, ""
	}
	logger.Trace().Msg("read cart blob")

	items, format, revision := decode(raw)
	logger = logger.With().Str(log.KeyCartFormat, string(format)).Logger()
	metrics.CartRecoveries.WithLabelValues(string(format)).Inc()

	switch format {
	case FormatEmpty:
		return []model.CartItem{}, ""
	case FormatFuture:
		logger.Warn().Msg("cart blob written by a newer version, leaving it untouched")
		return []model.CartItem{}, ""
	case FormatCorrupt:
		logger = logger.With().Str(log.KeyProcess, "clearing corrupted cart blob").Logger()
		logger.Warn().Msg("clearing corrupted cart blob")
		if err := s.storage.Delete(c, session, CartKey); err != nil {
			err = fmt.Errorf("failed clearing corrupted cart blob with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		return []model.CartItem{}, ""
	}

	validated := ValidateCartItems(c, items)
	if format != FormatV2 {
		logger = logger.With().Str(log.KeyProcess, "migrating cart blob").Logger()
		logger.Info().Msg("migrating cart blob")
		migrated, err := s.write(c, session, validated)
		if err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		} else {
			revision = migrated
			logger.Info().Msg("migrated cart blob")
		}
	}
	return validated, revision
}

func (s *SecureStore) Clear(c context.Context, session string) error {
	c, span := otel.Tracer.Start(c, "SecureStore Clear")
	defer span.End()

	if err := s.storage.Delete(c, session, CartKey); err != nil {
		err = fmt.Errorf("failed clearing cart blob with error=%w", err)
		inErrors.HandleError(err, span)
		zerolog.Ctx(c).Error().Err(err).Str(log.KeyGuestSession, session).Msg(err.Error())
		return err
	}
	s.notify(c, session, nil)
	return nil
}

func (s *SecureStore) write(c context.Context, session string, items []model.CartItem) (string, error) {
	blob, revision, err := encode(items)
	if err != nil {
		return "", err
	}
	if err = s.storage.Set(c, session, CartKey, blob); err != nil {
		return "", fmt.Errorf("failed writing cart blob with error=%w", err)
	}
	return revision, nil
}

func (s *SecureStore) notify(c context.Context, session string, items []model.CartItem) {
	owner := auth.Owner{GuestSession: session}.Key()
	err := s.publisher.Publish(c, event.CartUpdated{
		Owner: owner,
		Count: model.CountItems(items),
		At:    s.now(),
	})
	if err != nil {
		zerolog.Ctx(c).Warn().Err(err).Str(log.KeyOwner, owner).Msg("failed publishing cart updated event")
	}
}
