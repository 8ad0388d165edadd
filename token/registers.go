package token

// registerAliases maps the standard MIPS ABI register names to their
// numeric indices.
var registerAliases = map[string]int{
	"zero": 0,
	"at":   1,
	"v0":   2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25,
	"k0": 26, "k1": 27,
	"gp": 28,
	"sp": 29,
	"fp": 30,
	"ra": 31,
}

// resolveRegister maps a register name (without the leading '$') to its
// index. Numeric names ("$0".."$31") are also accepted.
func resolveRegister(name string) (int, bool) {
	if idx, ok := registerAliases[name]; ok {
		return idx, true
	}
	if len(name) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 31 {
		return 0, false
	}
	return n, true
}
