package geometry

import "fmt"

// Point 二维坐标/位移
type Point struct {
	X float64 `yaml:"x" bson:"x" json:"x"`
	Y float64 `yaml:"y" bson:"y" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Add 向量加法
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub 向量减法
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale 数乘
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}
