package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInsufficientFunds, "cost %.2f exceeds balance %.2f", 600.0, 500.0)
	suite.Equal(ErrCodeInsufficientFunds, err.Code)
	suite.Equal("cost 600.00 exceeds balance 500.00", err.Message)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("connection reset")
	err := Wrapf(ErrCodeLiveOrderFailed, cause, "market order for %s failed", "BTCUSDT")
	suite.Equal(ErrCodeLiveOrderFailed, err.Code)
	suite.Equal("market order for BTCUSDT failed", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())

	wrapped := Wrap(ErrCodeDataError, "fetch failed", errors.New("timeout"))
	suite.Equal("[200] fetch failed: timeout", wrapped.Error())
}

func (suite *ErrorTestSuite) TestUnwrapKeepsCause() {
	cause := errors.New("exchange down")
	err := Wrap(ErrCodeLiveOrderFailed, "order failed", cause)
	suite.Equal(cause, err.Unwrap())
	suite.True(Is(err, cause))
	suite.Nil(New(ErrCodeInvalidParameter, "x").Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	inner := New(ErrCodeQuoteFailed, "no ticker")
	outer := Wrap(ErrCodeDataError, "quote failed", inner)
	suite.Equal(ErrCodeDataError, GetCode(outer))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
	suite.True(HasCode(outer, ErrCodeDataError))
	suite.False(HasCode(outer, ErrCodeQuoteFailed))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInsufficientPosition, "not enough")
	var target *Error
	suite.True(As(err, &target))
	suite.Equal(ErrCodeInsufficientPosition, target.Code)
}

func (suite *ErrorTestSuite) TestIsRecoverable() {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "data error", err: New(ErrCodeDataError, "x"), want: true},
		{name: "insufficient funds", err: New(ErrCodeInsufficientFunds, "x"), want: true},
		{name: "live order failed", err: Wrap(ErrCodeLiveOrderFailed, "x", errors.New("y")), want: true},
		{name: "plain error", err: errors.New("boom"), want: true},
		{name: "configuration", err: New(ErrCodeInvalidConfiguration, "x"), want: false},
		{name: "mode", err: New(ErrCodeInvalidMode, "x"), want: false},
		{name: "version", err: New(ErrCodeInvalidVersion, "x"), want: false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.want, IsRecoverable(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestLabel() {
	suite.Equal("insufficient_funds", Label(New(ErrCodeInsufficientFunds, "x")))
	suite.Equal("data", Label(New(ErrCodeInvalidSeries, "x")))
	suite.Equal("market_data", Label(New(ErrCodeMarketDataFetchFailed, "x")))
	suite.Equal("unknown", Label(errors.New("x")))
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(101), ErrCodeInvalidConfiguration)
	suite.Equal(ErrorCode(200), ErrCodeDataError)
	suite.Equal(ErrorCode(500), ErrCodeInsufficientFunds)
	suite.Equal(ErrorCode(501), ErrCodeInsufficientPosition)
	suite.Equal(ErrorCode(502), ErrCodeLiveOrderFailed)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
}
