package weather

import (
	"github.com/pkg/errors"
)

// インターバル
type Interval string

// インターバル
const (
	IntervalH1  Interval = "1h"
	IntervalM30 Interval = "30m"
	IntervalM15 Interval = "15m"
	IntervalM10 Interval = "10m"
)

/*
1時間を分割するステップ数からインターバルを求める。

	Args:
		n: 1時間を分割するステップ数（1, 2, 4, 6）

	Returns:
		インターバル
*/
func IntervalFromStepsPerHour(n int) (Interval, error) {
	switch n {
	case 1:
		return IntervalH1, nil
	case 2:
		return IntervalM30, nil
	case 4:
		return IntervalM15, nil
	case 6:
		return IntervalM10, nil
	default:
		return "", errors.Errorf("unsupported number of timesteps per hour %d", n)
	}
}

/*
1時間を分割するステップ数を求める。

	Returns:
		1時間を分割するステップ数

	Notes:
		1時間: 1
		30分: 2
		15分: 4
		10分: 6
		不明なインターバルは 1 とする。
*/
func (i Interval) StepsPerHour() int {
	switch i {
	case IntervalM30:
		return 2
	case IntervalM15:
		return 4
	case IntervalM10:
		return 6
	default:
		return 1
	}
}

// Hours はインターバル時間, h
func (i Interval) Hours() float64 {
	return 1.0 / float64(i.StepsPerHour())
}

// Seconds はインターバル時間, s
func (i Interval) Seconds() float64 {
	return 3600.0 / float64(i.StepsPerHour())
}

/*
指定した日数は何ステップに対応するのか、その数を取得する。

	Args:
		days: 日数

	Returns:
		ステップ数
*/
func (i Interval) Steps(days int) int {
	return 24 * days * i.StepsPerHour()
}
