package math

// Vec4 is a 4-component vector. Material colors use it as RGBA.
type Vec4 struct {
	X, Y, Z, W float32
}

// RGBA builds a color from its channels.
func RGBA(r, g, b, a float32) Vec4 {
	return Vec4{r, g, b, a}
}
