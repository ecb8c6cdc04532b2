package imgproc

import (
	"image"

	"github.com/MeKo-Tech/barscan/internal/mempool"
)

// Canny returns a binary edge map (255 = edge) using 3x3 Sobel gradients,
// L1 magnitude, non-maximum suppression and hysteresis between low and high.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	if IsEmpty(g) {
		return image.NewGray(image.Rectangle{})
	}
	if low > high {
		low, high = high, low
	}
	return canny(packed(g), low, high)
}

// CountNonZero returns the number of pixels with a non-zero value.
func CountNonZero(g *image.Gray) int {
	n := 0
	for _, v := range packed(g).Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func nativeCanny(src *image.Gray, low, high float64) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	at := func(x, y int) int {
		return int(src.Pix[reflect101(y, h)*src.Stride+reflect101(x, w)])
	}

	gx, gy, mag := mempool.GetInts(w*h), mempool.GetInts(w*h), mempool.GetInts(w*h)
	defer func() {
		mempool.PutInts(gx)
		mempool.PutInts(gy)
		mempool.PutInts(mag)
	}()
	for y := range h {
		for x := range w {
			dx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			dy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			gx[i], gy[i] = dx, dy
			mag[i] = abs(dx) + abs(dy)
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		none = iota
		weak
		strong
	)
	state := mempool.GetBytes(w * h)
	defer mempool.PutBytes(state)
	stack := make([]int, 0, w)
	// tan(22.5) and tan(67.5) in 15-bit fixed point.
	const tg22 = 13573
	for y := range h {
		for x := range w {
			i := y*w + x
			m := mag[i]
			if float64(m) <= low {
				continue
			}
			ax, ay := abs(gx[i]), abs(gy[i])
			ay15 := ay << 15
			tg22x := ax * tg22
			var keep bool
			switch {
			case ay15 < tg22x:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay15 > tg22x+(ax<<16):
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx[i] < 0) != (gy[i] < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}
			if float64(m) > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for _, i := range stack {
		out.Pix[i] = 255
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
