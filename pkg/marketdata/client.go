package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-autotrader/pkg/marketdata/writer"
	"go.uber.org/multierr"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance csv"`
	WriterType    WriterType            `validate:"required,oneof=duckdb"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
	CSVPath       string                `validate:"required_if=ProviderType csv"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string             `validate:"required"`
	StartDate time.Time          `validate:"required"`
	EndDate   time.Time          `validate:"required,gtfield=StartDate"`
	Timeframe provider.Timeframe `validate:"required"`
}

// Client downloads bars from a provider and archives them as parquet.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(provider.Config{
		Type:          config.ProviderType,
		PolygonApiKey: config.PolygonApiKey,
		CSVPath:       config.CSVPath,
	})
	if err != nil {
		return nil, err
	}

	return newClient(marketProvider, config, validate, onProgress), nil
}

func newClient(p provider.Provider, config ClientConfig, validate *validator.Validate, onProgress provider.OnDownloadProgress) *Client {
	return &Client{
		provider:   p,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}
}

// Download archives the requested range and returns the parquet path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (path string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if _, err := provider.ParseTimeframe(string(params.Timeframe)); err != nil {
		return "", err
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		multierr.AppendInto(&err, marketWriter.Close())
	}()

	c.provider.ConfigWriter(marketWriter)

	path, err = c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, params.Timeframe, c.onProgress)
	if err != nil {
		return "", err
	}

	return path, nil
}

// OutputPath returns the parquet file a download with params produces:
// TICKER_START_END_TIMEFRAME.parquet under the data path.
func (c *Client) OutputPath(params DownloadParams) string {
	name := fmt.Sprintf("%s_%s_%s_%s.parquet",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Timeframe)

	return filepath.Join(c.config.DataPath, name)
}

func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data path %s", c.config.DataPath)
		}

		outputPath := c.OutputPath(params)

		duckdbWriter := writer.NewDuckDBWriter(outputPath)
		if err := duckdbWriter.Initialize(); err != nil {
			return nil, err
		}

		return duckdbWriter, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
