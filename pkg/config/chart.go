package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ChartAccount cuenta del plan de cuentas inicial.
type ChartAccount struct {
	Code     string `mapstructure:"code"`
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Category string `mapstructure:"category"`
}

// DefaultChart plan de cuentas mínimo que cubre los códigos por defecto de AccountsConfig.
var DefaultChart = []ChartAccount{
	{Code: "1100", Name: "Caja y bancos", Type: "ASSET", Category: "corriente"},
	{Code: "1400", Name: "Inventario de mercancías", Type: "ASSET", Category: "corriente"},
	{Code: "1410", Name: "Inventario de materias primas", Type: "ASSET", Category: "corriente"},
	{Code: "1430", Name: "Inventario de producto terminado", Type: "ASSET", Category: "corriente"},
	{Code: "1450", Name: "Producción en proceso", Type: "ASSET", Category: "corriente"},
	{Code: "2100", Name: "Proveedores", Type: "LIABILITY", Category: "corriente"},
	{Code: "2150", Name: "Recepciones por facturar", Type: "LIABILITY", Category: "corriente"},
	{Code: "3100", Name: "Capital social", Type: "EQUITY"},
	{Code: "3600", Name: "Resultados acumulados", Type: "EQUITY"},
	{Code: "4100", Name: "Ventas", Type: "REVENUE", Category: "operacional"},
	{Code: "4900", Name: "Sobrantes de inventario", Type: "REVENUE", Category: "no operacional"},
	{Code: "5100", Name: "Costo de ventas", Type: "EXPENSE", Category: "operacional"},
	{Code: "5900", Name: "Faltantes de inventario", Type: "EXPENSE", Category: "no operacional"},
}

// LoadChart lee el plan de cuentas desde un archivo yaml/json con la lista bajo la clave "accounts".
// path vacío retorna DefaultChart.
func LoadChart(path string) ([]ChartAccount, error) {
	if path == "" {
		return DefaultChart, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer plan de cuentas %s: %w", path, err)
	}
	var chart struct {
		Accounts []ChartAccount `mapstructure:"accounts"`
	}
	if err := v.Unmarshal(&chart); err != nil {
		return nil, fmt.Errorf("decodificar plan de cuentas %s: %w", path, err)
	}
	if len(chart.Accounts) == 0 {
		return nil, fmt.Errorf("plan de cuentas %s vacío", path)
	}
	return chart.Accounts, nil
}
