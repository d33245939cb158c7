package weather

// ToFahrenheit converts a Celsius temperature to Fahrenheit.
func ToFahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// ToCelsius converts a Fahrenheit temperature back to Celsius.
func ToCelsius(fahrenheit float64) float64 {
	return (fahrenheit - 32) * 5 / 9
}
