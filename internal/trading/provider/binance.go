package tradingprovider

import (
	"context"
	"math"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-autotrader/internal/execution"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/internal/utils"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// BinanceDecimalPrecision is a default decimal precision used as a fallback.
	// 8 decimals allows for satoshi-level precision (0.00000001 BTC) for BTC-like assets.
	BinanceDecimalPrecision = 8
)

// Service interfaces for mocking the Binance API

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// ListPricesService interface for the ticker price endpoint.
type ListPricesService interface {
	Symbol(symbol string) ListPricesService
	Do(ctx context.Context) ([]*binance.SymbolPrice, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
	NewListPricesService() ListPricesService
	NewGetAccountService() GetAccountService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewListPricesService() ListPricesService {
	return &realListPricesService{service: r.client.NewListPricesService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realListPricesService struct {
	service *binance.ListPricesService
}

func (s *realListPricesService) Symbol(symbol string) ListPricesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realListPricesService) Do(ctx context.Context) ([]*binance.SymbolPrice, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

// BinanceGateway quotes prices and submits market orders on Binance spot.
// It is stateless; the exchange is the source of truth for live fills.
type BinanceGateway struct {
	client           BinanceClient
	decimalPrecision int
}

// NewBinanceGateway creates a gateway for the live or testnet environment.
// If useTestnet is true, connects to Binance Testnet (https://testnet.binance.vision/).
// If config.BaseURL is set, it takes precedence over useTestnet.
func NewBinanceGateway(config BinanceProviderConfig, useTestnet bool) (*BinanceGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if useTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceGatewayWithClient(&realBinanceClient{client: client}, BinanceDecimalPrecision), nil
}

func newBinanceGatewayWithClient(client BinanceClient, decimalPrecision int) *BinanceGateway {
	return &BinanceGateway{
		client:           client,
		decimalPrecision: decimalPrecision,
	}
}

// LatestPrice returns the last traded price of symbol.
func (b *BinanceGateway) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQuoteFailed, err, "failed to get ticker price for %s", symbol)
	}

	for _, p := range prices {
		if p == nil || p.Symbol != symbol {
			continue
		}

		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodeQuoteFailed, err, "invalid ticker price %q for %s", p.Price, symbol)
		}

		if !(price > 0) || math.IsInf(price, 1) {
			return 0, errors.Newf(errors.ErrCodeQuoteFailed, "ticker price %q for %s is not a positive finite number", p.Price, symbol)
		}

		return price, nil
	}

	return 0, errors.Newf(errors.ErrCodeQuoteFailed, "no ticker price for %s", symbol)
}

// SubmitMarketOrder places a MARKET order and reports the fill.
func (b *BinanceGateway) SubmitMarketOrder(ctx context.Context, symbol string, side types.Side, quantity float64) (types.OrderConfirmation, error) {
	var binanceSide binance.SideType

	switch side {
	case types.SideBuy:
		binanceSide = binance.SideTypeBuy
	case types.SideSell:
		binanceSide = binance.SideTypeSell
	default:
		return types.OrderConfirmation{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order side: %s", side)
	}

	if !(quantity > 0) || math.IsInf(quantity, 1) {
		return types.OrderConfirmation{}, errors.New(errors.ErrCodeInvalidParameter, "order quantity must be a positive finite number")
	}

	roundedQuantity := utils.RoundToDecimalPrecision(quantity, b.decimalPrecision)
	if roundedQuantity <= 0 {
		return types.OrderConfirmation{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"order quantity %.8f is too small after rounding to %d decimal places",
			quantity, b.decimalPrecision)
	}

	resp, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binanceSide).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(roundedQuantity, 'f', b.decimalPrecision, 64)).
		Do(ctx)
	if err != nil {
		return types.OrderConfirmation{}, errors.Wrap(errors.ErrCodeLiveOrderFailed, "failed to place order on Binance", err)
	}

	return convertOrderResponse(resp), nil
}

// CheckConnection verifies connectivity and authentication.
func (b *BinanceGateway) CheckConnection(ctx context.Context) error {
	if _, err := b.client.NewGetAccountService().Do(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeLiveOrderFailed, "failed to connect to Binance API", err)
	}

	return nil
}

// FreeBalance returns the free balance of asset in the exchange account.
func (b *BinanceGateway) FreeBalance(ctx context.Context, asset string) (float64, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeLiveOrderFailed, "failed to get account info from Binance", err)
	}

	for _, balance := range account.Balances {
		if balance.Asset == asset {
			free, err := strconv.ParseFloat(balance.Free, 64)
			if err != nil {
				return 0, errors.Wrapf(errors.ErrCodeLiveOrderFailed, err, "invalid balance %q for %s", balance.Free, asset)
			}

			if !(free >= 0) || math.IsInf(free, 1) {
				return 0, errors.Newf(errors.ErrCodeLiveOrderFailed, "balance %q for %s is not a non-negative finite number", balance.Free, asset)
			}

			return free, nil
		}
	}

	return 0, nil
}

// convertOrderResponse reads the executed quantity and derives the average
// fill price from the cumulative quote quantity, falling back to the fills.
func convertOrderResponse(resp *binance.CreateOrderResponse) types.OrderConfirmation {
	if resp == nil {
		return types.OrderConfirmation{Status: types.OrderStatusFailed}
	}

	executed := parseDecimal(resp.ExecutedQuantity)
	quote := parseDecimal(resp.CummulativeQuoteQuantity)

	if quote.IsZero() && len(resp.Fills) > 0 {
		filled := decimal.Zero

		for _, fill := range resp.Fills {
			if fill == nil {
				continue
			}

			qty := parseDecimal(fill.Quantity)
			quote = quote.Add(qty.Mul(parseDecimal(fill.Price)))
			filled = filled.Add(qty)
		}

		if executed.IsZero() {
			executed = filled
		}
	}

	var fillPrice float64
	if executed.IsPositive() {
		fillPrice = quote.Div(executed).InexactFloat64()
	}

	return types.OrderConfirmation{
		OrderID:        strconv.FormatInt(resp.OrderID, 10),
		FilledQuantity: executed.InexactFloat64(),
		FillPrice:      fillPrice,
		Status:         mapBinanceOrderStatus(resp.Status),
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// mapBinanceOrderStatus maps Binance order status to our OrderStatus type.
func mapBinanceOrderStatus(status binance.OrderStatusType) types.OrderStatus {
	switch status {
	case binance.OrderStatusTypeNew, binance.OrderStatusTypePartiallyFilled:
		return types.OrderStatusPending
	case binance.OrderStatusTypeFilled:
		return types.OrderStatusFilled
	case binance.OrderStatusTypeRejected:
		return types.OrderStatusRejected
	default:
		return types.OrderStatusFailed
	}
}

var (
	_ execution.PriceQuote   = (*BinanceGateway)(nil)
	_ execution.OrderGateway = (*BinanceGateway)(nil)
)
