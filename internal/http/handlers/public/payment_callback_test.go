package public

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestVNPayAck(t *testing.T) {
	processed := &service.CallbackResult{Order: &models.Order{}}
	duplicate := &service.CallbackResult{Order: &models.Order{}, Duplicate: true}
	invalid := fmt.Errorf("%w: bad hash", service.ErrPaymentCallbackInvalid)

	cases := []struct {
		name   string
		result *service.CallbackResult
		err    error
		want   string
	}{
		{name: "processed", result: processed, want: constants.VNPayRspSuccess},
		{name: "duplicate", result: duplicate, want: constants.VNPayRspOrderDone},
		{name: "verify failed after failure path", result: processed, err: invalid, want: constants.VNPayRspChecksum},
		{name: "verify failed without order", err: invalid, want: constants.VNPayRspChecksum},
		{name: "order not found", err: service.ErrOrderNotFound, want: constants.VNPayRspNotFound},
		{name: "other", err: errors.New("db down"), want: constants.VNPayRspUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, vnpayAck(tc.result, tc.err).RspCode)
		})
	}
}

func TestMoMoAckStatus(t *testing.T) {
	processed := &service.CallbackResult{Order: &models.Order{}}
	invalid := fmt.Errorf("%w: bad signature", service.ErrPaymentCallbackInvalid)

	assert.Equal(t, http.StatusNoContent, momoAckStatus(processed, nil))
	assert.Equal(t, http.StatusNoContent, momoAckStatus(&service.CallbackResult{Order: &models.Order{}, Duplicate: true}, nil))
	assert.Equal(t, http.StatusBadRequest, momoAckStatus(processed, invalid))
	assert.Equal(t, http.StatusBadRequest, momoAckStatus(nil, invalid))
	assert.Equal(t, http.StatusNotFound, momoAckStatus(nil, service.ErrOrderNotFound))
	assert.Equal(t, http.StatusInternalServerError, momoAckStatus(nil, errors.New("db down")))
}
