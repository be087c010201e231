package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/trkhoanh/quant-backtest/internal/backtest"
)

// DefaultExcelReporter writes a results workbook with Trades, Equity
// and Metrics sheets.
type DefaultExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

type excelStyles struct {
	header   int
	currency int
	percent  int
}

// WriteWorkbook writes the full results workbook to path.
func (r *DefaultExcelReporter) WriteWorkbook(result *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const equitySheet = "Equity"
	const metricsSheet = "Metrics"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(equitySheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(metricsSheet); err != nil {
		return err
	}

	styles, err := r.createStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, result, styles); err != nil {
		return err
	}
	if err := r.writeEquitySheet(fx, equitySheet, result, styles); err != nil {
		return err
	}
	if err := r.writeMetricsSheet(fx, metricsSheet, result, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	header, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return excelStyles{}, err
	}

	currency, err := fx.NewStyle(&excelize.Style{NumFmt: 177}) // $#,##0.00
	if err != nil {
		return excelStyles{}, err
	}

	percent, err := fx.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return excelStyles{}, err
	}

	return excelStyles{header: header, currency: currency, percent: percent}, nil
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	headers := []string{"Date", "Side", "Size", "Price", "Cost", "Proceeds", "Commission", "PnL"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, t := range result.Trades {
		row := i + 2
		values := []interface{}{
			t.Date.Format("2006-01-02 15:04:05"),
			string(t.Kind),
			t.Size,
			t.Price,
			t.Cost,
			t.Proceeds,
			t.Commission,
			t.PnL,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *DefaultExcelReporter) writeEquitySheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	fx.SetCellValue(sheet, "A1", "Timestamp")
	fx.SetCellValue(sheet, "B1", "Equity")
	fx.SetCellStyle(sheet, "A1", "B1", styles.header)

	for i, p := range result.EquityCurve {
		row := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Timestamp.Format("2006-01-02 15:04:05"))
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Value)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.currency)
	}

	return nil
}

func (r *DefaultExcelReporter) writeMetricsSheet(fx *excelize.File, sheet string, result *backtest.Result, styles excelStyles) error {
	m := result.Metrics

	profitFactor := interface{}(m.ProfitFactor)
	if math.IsInf(m.ProfitFactor, 1) {
		profitFactor = "inf"
	}

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Strategy", result.StrategyName, 0},
		{"Initial Capital", result.InitialCapital, styles.currency},
		{"Final Capital", result.FinalCapital, styles.currency},
		{"Total Return", m.TotalReturn, styles.percent},
		{"Annualized Return", m.AnnualizedReturn, styles.percent},
		{"Volatility", m.Volatility, styles.percent},
		{"Sharpe Ratio", m.SharpeRatio, 0},
		{"Sortino Ratio", m.SortinoRatio, 0},
		{"Calmar Ratio", m.CalmarRatio, 0},
		{"Max Drawdown", m.MaxDrawdown, styles.percent},
		{"Avg Drawdown", m.AvgDrawdown, styles.percent},
		{"Win Rate", m.WinRate, styles.percent},
		{"Profit Factor", profitFactor, 0},
		{"Trades", m.TradeCount, 0},
		{"Dropped Signals", result.TotalDropped(), 0},
	}

	fx.SetCellValue(sheet, "A1", "Metric")
	fx.SetCellValue(sheet, "B1", "Value")
	fx.SetCellStyle(sheet, "A1", "B1", styles.header)

	for i, row := range rows {
		n := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", n), row.label)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", n), row.value)
		if row.style != 0 {
			fx.SetCellStyle(sheet, fmt.Sprintf("B%d", n), fmt.Sprintf("B%d", n), row.style)
		}
	}

	return nil
}
