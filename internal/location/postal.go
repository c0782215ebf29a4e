package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/framedarchive/internal/config"
	inErrors "github.com/Alturino/framedarchive/internal/errors"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/otel"
)

type Location struct {
	PinCode string `json:"pinCode"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type postOffice struct {
	District string `json:"District"`
	State    string `json:"State"`
}

type lookupResult struct {
	Status     string       `json:"Status"`
	PostOffice []postOffice `json:"PostOffice"`
}

// PostalClient resolves pin codes against the India Post pin code api.
type PostalClient struct {
	baseURL string
	client  *http.Client
}

func NewPostalClient(cfg config.Location) *PostalClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostalClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport), Timeout: timeout},
	}
}

// Lookup returns the district and state of pinCode. A malformed or unknown pin code
// is ErrPinCodeNotFound.
func (p *PostalClient) Lookup(c context.Context, pinCode string) (Location, error) {
	c, span := otel.Tracer.Start(c, "PostalClient Lookup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostalClient Lookup").
		Str(log.KeyPinCode, pinCode).
		Logger()

	if !ValidPinCode(pinCode) {
		err := fmt.Errorf("failed looking up pin code=%s with error=%w", pinCode, inErrors.ErrPinCodeNotFound)
		inErrors.HandleError(err, span)
		return Location{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "requesting pin code").Logger()
	logger.Trace().Msg("requesting pin code")
	req, err := http.NewRequestWithContext(c, http.MethodGet, p.baseURL+"/pincode/"+pinCode, nil)
	if err != nil {
		err = fmt.Errorf("failed creating pin code request with error=%w", err)
		inErrors.HandleError(err, span)
		return Location{}, err
	}
	res, err := p.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting pin code with error=%w: %w", inErrors.ErrLocationUnavailable, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Location{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("pin code api responded status=%d with error=%w", res.StatusCode, inErrors.ErrLocationUnavailable)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Location{}, err
	}

	results := []lookupResult{}
	if err = json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&results); err != nil {
		err = fmt.Errorf("failed decoding pin code response with error=%w: %w", inErrors.ErrLocationUnavailable, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Location{}, err
	}
	if len(results) == 0 || !strings.EqualFold(results[0].Status, "success") || len(results[0].PostOffice) == 0 {
		err = fmt.Errorf("failed looking up pin code=%s with error=%w", pinCode, inErrors.ErrPinCodeNotFound)
		inErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return Location{}, err
	}

	office := results[0].PostOffice[0]
	logger.Trace().Str("state", office.State).Msg("resolved pin code")
	return Location{PinCode: pinCode, City: office.District, State: office.State}, nil
}

