// Package sensor provides accelerometer sample sources: an LSM6DSL on an
// I2C bus, the shared memory ring written by gesturefeed, and CSV replay.
// All sources report milli-g.
package sensor

// LSM6DSL registers and settings.
const (
	LSM6DSLAddr    = 0x6A // SA0 low; 0x6B when high
	LSM6DSLWhoAmI  = 0x6A // WHO_AM_I value
	RegWhoAmI      = 0x0F
	RegCtrl1XL     = 0x10 // accelerometer ODR and full scale
	RegCtrl3C      = 0x12
	RegOutXLXL     = 0x28 // first of six output bytes, X/Y/Z little endian
	Ctrl3CBDU      = 0x40 // block data update
	Ctrl3CIfInc    = 0x04 // register address auto-increment
	Ctrl3CSWReset  = 0x01
	ODR104Hz       = 0x40
	FullScale2G    = 0x00
	Sensitivity2G  = 0.061 // mg/LSB at ±2g
	OutputDataSize = 6
)
