//go:build pppos_fcs_bitwise

package pppos

func fcs_step(fcs uint16, c byte) uint16 {
	return fcs_step_bitwise(fcs, c)
}
