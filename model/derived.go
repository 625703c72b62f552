package model

import (
	"fmt"
	"time"
)

// Value 是带标记的指标值，Valid 为 false 表示该位置尚未定义（预热期）。
// 不用 NaN 表示未定义，避免和真实计算出的 0 混淆。
type Value struct {
	Float float64
	Valid bool
}

// Defined 创建一个已定义的值
func Defined(v float64) Value {
	return Value{Float: v, Valid: true}
}

// Undefined 创建一个未定义的值
func Undefined() Value {
	return Value{}
}

// Point 是 DerivedSeries 中一个已定义的点，供图表使用
type Point struct {
	Time  time.Time
	Value float64
}

// DerivedSeries 是指标的输出序列，与输入的 PriceSeries 按索引一一对齐
type DerivedSeries struct {
	Name   string
	Time   []time.Time
	Values []Value
}

// NewDerivedSeries 创建输出序列，times 和 values 长度必须一致
func NewDerivedSeries(name string, times []time.Time, values []Value) *DerivedSeries {
	if len(times) != len(values) {
		panic(fmt.Sprintf("derived series %s: %d times for %d values", name, len(times), len(values)))
	}
	return &DerivedSeries{Name: name, Time: times, Values: values}
}

// Len 返回序列长度
func (d *DerivedSeries) Len() int {
	return len(d.Values)
}

// At 返回第 i 个值以及它是否已定义
func (d *DerivedSeries) At(i int) (float64, bool) {
	v := d.Values[i]
	return v.Float, v.Valid
}

// FirstDefined 返回第一个已定义值的索引，全部未定义时返回 -1
func (d *DerivedSeries) FirstDefined() int {
	for i, v := range d.Values {
		if v.Valid {
			return i
		}
	}
	return -1
}

// Last 返回最后一个值
func (d *DerivedSeries) Last() (float64, bool) {
	if len(d.Values) == 0 {
		return 0, false
	}
	return d.At(len(d.Values) - 1)
}

// Defined 只返回已定义的点
func (d *DerivedSeries) Defined() []Point {
	points := make([]Point, 0, len(d.Values))
	for i, v := range d.Values {
		if v.Valid {
			points = append(points, Point{Time: d.Time[i], Value: v.Float})
		}
	}
	return points
}

// Floats 返回原始数值。存在未定义的值时返回 ErrInvalidInput，
// 调用方需要的是完整序列（例如对 MACD 线再做 EMA）。
func (d *DerivedSeries) Floats() (Series[float64], error) {
	values := make(Series[float64], len(d.Values))
	for i, v := range d.Values {
		if !v.Valid {
			return nil, fmt.Errorf("%w: %s is undefined at index %d", ErrInvalidInput, d.Name, i)
		}
		values[i] = v.Float
	}
	return values, nil
}
