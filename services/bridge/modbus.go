// bridge/modbus.go
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/goburrow/modbus"

	"mcp3421-go/types"
	"mcp3421-go/x/timex"
)

type modbusTransport struct {
	cfg types.BridgeConfig
}

func newModbusTransport(cfg types.BridgeConfig) (Transport, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus_tcp: endpoint required")
	}
	return &modbusTransport{cfg: cfg}, nil
}

func (t *modbusTransport) String() string { return "modbus_tcp://" + t.cfg.Endpoint }

func (t *modbusTransport) Open(ctx context.Context) (RegisterWriter, error) {
	h := modbus.NewTCPClientHandler(t.cfg.Endpoint)
	h.Timeout = timex.Ms(t.cfg.TimeoutMs)
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &endpointClient{handler: h, client: modbus.NewClient(h)}, nil
}

// endpointClient is a single TCP connection. It serialises requests because
// it mutates SlaveId per write.
type endpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

func (c *endpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

func (c *endpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
