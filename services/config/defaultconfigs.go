package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (set on ctx with WithDevice)
// Val: YAML document for that device
// -----------------------------------------------------------------------------

const cfgDefault = `
hal:
  devices:
    - id: adc0
      type: mcp3421
      bus_ref: { type: i2c, id: i2c0 }
      params:
        addr_code: 0
        mode: one_shot
        bits: 16
        gain: 1
        sample_every_ms: 500
heartbeat:
  interval_ms: 2000
`

const cfgSim = `
log:
  level: debug
hal:
  devices:
    - id: adc0
      type: mcp3421
      bus_ref: { id: i2c0 }
      params:
        bits: 18
        sample_every_ms: 1000
heartbeat:
  interval_ms: 5000
`

var embeddedConfigs = map[string][]byte{
	"default": []byte(cfgDefault),
	"sim":     []byte(cfgSim),
}
