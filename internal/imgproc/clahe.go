package imgproc

import "image"

// CLAHE applies contrast-limited adaptive histogram equalization with the given
// clip limit over a tiles x tiles grid.
func CLAHE(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	if IsEmpty(g) {
		return image.NewGray(image.Rectangle{})
	}
	if tiles < 1 {
		tiles = 1
	}
	return clahe(packed(g), clipLimit, tiles)
}

func nativeCLAHE(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tx, ty := tiles, tiles
	if tx > w {
		tx = w
	}
	if ty > h {
		ty = h
	}
	tileW := (w + tx - 1) / tx
	tileH := (h + ty - 1) / ty
	tx = (w + tileW - 1) / tileW
	ty = (h + tileH - 1) / tileH

	luts := make([][256]uint8, tx*ty)
	for j := range ty {
		for i := range tx {
			x0, y0 := i*tileW, j*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)
			luts[j*tx+i] = tileLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		j0 := clampInt(int(floor(fy)), 0, ty-1)
		j1 := clampInt(j0+1, 0, ty-1)
		wy := clamp01(fy - float64(j0))
		for x := range w {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			i0 := clampInt(int(floor(fx)), 0, tx-1)
			i1 := clampInt(i0+1, 0, tx-1)
			wx := clamp01(fx - float64(i0))

			v := src.Pix[y*src.Stride+x]
			top := (1-wx)*float64(luts[j0*tx+i0][v]) + wx*float64(luts[j0*tx+i1][v])
			bot := (1-wx)*float64(luts[j1*tx+i0][v]) + wx*float64(luts[j1*tx+i1][v])
			out.Pix[y*out.Stride+x] = uint8(clampInt(int((1-wy)*top+wy*bot+0.5), 0, 255))
		}
	}
	return out
}

// tileLUT builds the clipped, redistributed equalization table for one tile.
func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for _, v := range src.Pix[y*src.Stride+x0 : y*src.Stride+x1] {
			hist[v]++
		}
	}
	area := (x1 - x0) * (y1 - y0)

	var lut [256]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(area)/256), 1)
		excess := 0
		for i, c := range hist {
			if c > limit {
				excess += c - limit
				hist[i] = limit
			}
		}
		bonus := excess / 256
		residual := excess - bonus*256
		for i := range hist {
			hist[i] += bonus
		}
		if residual > 0 {
			step := max(256/residual, 1)
			for i := 0; i < 256 && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i, c := range hist {
		sum += c
		lut[i] = uint8(clampInt(int(float64(sum)*scale+0.5), 0, 255))
	}
	return lut
}

func floor(v float64) float64 {
	i := float64(int(v))
	if v < 0 && i != v {
		return i - 1
	}
	return i
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
