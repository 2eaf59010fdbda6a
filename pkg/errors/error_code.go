package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidVersion       ErrorCode = 103
	ErrCodeInvalidMode          ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106

	// Data errors (200-299)
	ErrCodeDataError             ErrorCode = 200
	ErrCodeInvalidSeries         ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeNoDataFound           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Forecast errors (400-499)
	ErrCodeForecastFailed ErrorCode = 400
	ErrCodeModelNotLoaded ErrorCode = 401

	// Trading errors (500-599)
	ErrCodeInsufficientFunds    ErrorCode = 500
	ErrCodeInsufficientPosition ErrorCode = 501
	ErrCodeLiveOrderFailed      ErrorCode = 502
	ErrCodeQuoteFailed          ErrorCode = 503

	// Control loop errors (600-699)
	ErrCodeLoopAlreadyRunning ErrorCode = 600
	ErrCodeIterationTimeout   ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeMarketDataWriteFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703

	// Recorder errors (800-899)
	ErrCodeRecorderFailed ErrorCode = 800
)

// String returns a short name for the code, used as a metrics label.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidParameter, ErrCodeMissingParameter, ErrCodeInvalidPeriod:
		return "invalid_parameter"
	case ErrCodeInvalidConfiguration, ErrCodeInvalidVersion, ErrCodeInvalidMode, ErrCodeInvalidProvider:
		return "configuration"
	case ErrCodeDataError, ErrCodeInvalidSeries, ErrCodeDataSourceUnavailable, ErrCodeQueryFailed,
		ErrCodeNoDataFound, ErrCodeInsufficientData:
		return "data"
	case ErrCodeMarketDataFetchFailed, ErrCodeMarketDataParseFailed, ErrCodeMarketDataWriteFailed:
		return "market_data"
	case ErrCodeIndicatorCalculation:
		return "indicator"
	case ErrCodeForecastFailed, ErrCodeModelNotLoaded:
		return "forecast"
	case ErrCodeInsufficientFunds:
		return "insufficient_funds"
	case ErrCodeInsufficientPosition:
		return "insufficient_position"
	case ErrCodeLiveOrderFailed:
		return "live_order_failed"
	case ErrCodeQuoteFailed:
		return "quote"
	case ErrCodeLoopAlreadyRunning, ErrCodeIterationTimeout:
		return "loop"
	case ErrCodeRecorderFailed:
		return "recorder"
	default:
		return "unknown"
	}
}
