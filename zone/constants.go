package zone

// 1時間の秒数, s
const SecondsPerHour = 3600.0

// 標準大気圧, Pa
const StandardBarometricPressure = 101325.0

// 指数関数の引数の上限（オーバーフロー防止）
const maxExpArg = 700.0

// 熱容量倍率（ハイブリッドモデル）の下限と警告を出す上限, -
const (
	hybridMultiplierMin = 1.0
	hybridMultiplierMax = 30.0
)

// ハイブリッドモデルで熱容量倍率を求めるのに必要な実測温度の変化, K
const hybridMinTempChange = 0.05

// 乾き空気の比熱, J/(kg K)
func cpDryAir() float64 {
	return 1.00484e3
}

// 水蒸気の比熱, J/(kg K)
func cpVapor() float64 {
	return 1.85895e3
}

// 0℃における水の蒸発潜熱, J/kg
func latentHeat0() float64 {
	return 2.50094e6
}

// 乾き空気のガス定数, J/(kg K)
func gasConstantDryAir() float64 {
	return 287.0
}
