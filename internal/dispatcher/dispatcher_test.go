package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"p2pbank/internal/domain"
)

type stubBank struct{ code string }

func (b stubBank) Get() string { return b.code }

func newTestDispatcher() *Dispatcher {
	h := &domain.Handlers{
		Store: noopStore{},
		Proxy: noopProxy{},
		Bank:  stubBank{code: "192.168.1.7"},
	}
	return New(h)
}

func TestDispatchUnknownOpcode(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), "XY", []string{"foo"}, "1.2.3.4")
	assert.Equal(t, "ER Unknown command\n", resp)
}

func TestDispatchEmptyLine(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), "", nil, "1.2.3.4")
	assert.Equal(t, "ER Unknown command\n", resp)
}

func TestDispatchGetBankCode(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), "BC", nil, "1.2.3.4")
	assert.Equal(t, "BC 192.168.1.7\n", resp)
}

func TestDispatchDomainErrorFormatting(t *testing.T) {
	d := newTestDispatcher()
	resp := d.Dispatch(context.Background(), "AD", []string{"10001", "100"}, "1.2.3.4")
	assert.Equal(t, "ER Invalid account format. Use: account_number/bank_code\n", resp)
}
