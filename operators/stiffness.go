package operators

import "math"

// Second- and fourth-derivative operators (u'', v)_w and (u'''', v)_w. The
// bands are the raw inner products; ADD, ANN and ATT are registered with
// scale -1.

func abbBands(w *bandWriter, N int, ck []float64) {
	w.values(-2, func(e int) float64 {
		k := float64(e)
		return 2 * (k + 1) * (k + 4) * math.Pi
	})
	w.values(0, func(e int) float64 {
		k := float64(e)
		return -4 * (k + 1) * (k + 2) * (k + 2) / (k + 3) * math.Pi
	})
	w.values(2, func(e int) float64 {
		k := float64(e)
		return 2 * (k + 1) * (k + 2) * math.Pi
	})
}

// Upper triangular with a constant row factor on every even band
func addBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 {
		k := float64(e)
		return -2 * math.Pi * (k + 1) * (k + 2)
	})
	for j := 2; w.length(j) > 0; j += 2 {
		w.values(j, func(e int) float64 { return -4 * math.Pi * float64(e+1) })
	}
}

func annBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 {
		k := float64(e)
		return -2 * math.Pi * k * k * (k + 1) / (k + 2)
	})
	for j := 2; w.length(j) > 0; j += 2 {
		w.values(j, func(e int) float64 {
			k := float64(e)
			c := k + float64(j)
			return -4 * math.Pi * c * c * (k + 1) / ((k + 2) * (k + 2))
		})
	}
}

func attBands(w *bandWriter, N int, ck []float64) {
	for j := 2; w.length(j) > 0; j += 2 {
		w.values(j, func(e int) float64 {
			r := float64(e)
			c := float64(e + j)
			return c * (c*c - r*r) * halfPi
		})
	}
}

func sbbBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 {
		k := float64(e)
		return 8 * (k + 1) * (k + 1) * (k + 2) * (k + 4) * math.Pi
	})
	for j := 2; w.length(j) > 0; j += 2 {
		w.values(j, func(e int) float64 {
			r := float64(e)
			c := float64(e + j)
			return 8 * (r + 1) * (r + 2) * (r*(r+4) + 3*(c+2)*(c+2)) * math.Pi / (c + 3)
		})
	}
}
