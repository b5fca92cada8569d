package model

// evalPoly evaluates p0 + p1*e1 + p2*e2 + p3*e1^2 + p4*e2^2 (+ p5*e1^3 +
// p6*e2^3 when cubic), reading coefficients prefix+"0".."6" from params.
// A coefficient absent from params is treated as zero.
func evalPoly(params map[string]float64, prefix string, e1, e2 float64, cubic bool) float64 {
	coef := func(i int) float64 {
		v, ok := params[prefix+digit(i)]
		if !ok {
			return 0
		}
		return v
	}

	v := coef(0) + coef(1)*e1 + coef(2)*e2 + coef(3)*e1*e1 + coef(4)*e2*e2
	if cubic {
		v += coef(5)*e1*e1*e1 + coef(6)*e2*e2*e2
	}
	return v
}

func digit(i int) string {
	return string(rune('0' + i))
}
