package model

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Series 是一个有序数值序列，索引 0 是最早的值
type Series[T constraints.Ordered] []T

// Values 返回底层切片
func (s Series[T]) Values() []T {
	return s
}

// Len 返回序列长度
func (s Series[T]) Len() int {
	return len(s)
}

// Last 返回倒数第 position 个值，Last(0) 为最新值
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues 返回最后 size 个值
func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Window 返回 [i-size+1, i] 区间内的值，调用方保证 i >= size-1
func (s Series[T]) Window(i, size int) []T {
	return s[i-size+1 : i+1]
}

// NumDecPlaces 返回浮点数的小数位数，用于输出价格时保持原精度
func NumDecPlaces(v float64) int64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i > -1 {
		return int64(len(s) - i - 1)
	}
	return 0
}
