package enums

import "fmt"

// CutoutShape enumerates the drawable cutout primitives on a design sheet.
type CutoutShape string

const (
	CutoutCircle    CutoutShape = "circle"
	CutoutRectangle CutoutShape = "rectangle"
	CutoutHeart     CutoutShape = "heart"
	CutoutStar      CutoutShape = "star"
	CutoutDiamond   CutoutShape = "diamond"
	CutoutOval      CutoutShape = "oval"
)

var validCutoutShapes = []CutoutShape{
	CutoutCircle,
	CutoutRectangle,
	CutoutHeart,
	CutoutStar,
	CutoutDiamond,
	CutoutOval,
}

func (s CutoutShape) String() string {
	return string(s)
}

func (s CutoutShape) IsValid() bool {
	for _, candidate := range validCutoutShapes {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseCutoutShape(value string) (CutoutShape, error) {
	for _, candidate := range validCutoutShapes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cutout shape %q", value)
}
