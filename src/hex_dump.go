package pppos

func hex_dump(p []byte) {
	var offset = 0

	for len(p) > 0 {
		var n = min(len(p), 16)

		pp_printf("  %03x: ", offset)
		for i := 0; i < n; i++ {
			pp_printf(" %02x", p[i])
		}
		for i := n; i < 16; i++ {
			pp_printf("   ")
		}
		pp_printf("  ")
		for i := 0; i < n; i++ {
			if p[i] >= 0x20 && p[i] <= 0x7E {
				pp_printf("%c", p[i])
			} else {
				pp_printf(".")
			}
		}
		pp_printf("\n")
		p = p[n:]
		offset += n
	}
}
