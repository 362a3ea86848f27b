package io

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/series"
)

// BenchmarkCSVReader benchmarks CSV reading performance
func BenchmarkCSVReader(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("ReadCSV_%d_rows", size), func(b *testing.B) {
			csvData := generateCSVData(size)

			b.ResetTimer()
			for range b.N {
				if _, err := NewCSVReader(strings.NewReader(csvData), DefaultCSVOptions()).Read(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCSVWriter benchmarks CSV writing performance
func BenchmarkCSVWriter(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("WriteCSV_%d_rows", size), func(b *testing.B) {
			df := generateDataFrame(b, size)

			b.ResetTimer()
			for range b.N {
				var buf bytes.Buffer
				if err := NewCSVWriter(&buf, DefaultCSVOptions()).Write(df); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCSVTypeInference compares inference against declared kinds
func BenchmarkCSVTypeInference(b *testing.B) {
	csvData := generateCSVData(5000)

	b.Run("Inferred", func(b *testing.B) {
		for range b.N {
			if _, err := NewCSVReader(strings.NewReader(csvData), DefaultCSVOptions()).Read(); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Declared", func(b *testing.B) {
		opts := DefaultCSVOptions()
		opts.Types = map[string]series.Kind{
			"id":     series.KindInt64,
			"name":   series.KindString,
			"age":    series.KindInt64,
			"salary": series.KindFloat64,
			"active": series.KindBool,
		}
		for range b.N {
			if _, err := NewCSVReader(strings.NewReader(csvData), opts).Read(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// generateCSVData creates test CSV data with the specified number of rows
func generateCSVData(rows int) string {
	var sb strings.Builder
	sb.WriteString("id,name,age,salary,active\n")
	for i := range rows {
		fmt.Fprintf(&sb, "%d,Person_%d,%d,%.2f,%t\n",
			i, i, 25+(i%40), 30000.0+(float64(i)*100.0), i%2 == 0)
	}
	return sb.String()
}

// generateDataFrame creates a test DataFrame with the specified number of rows
func generateDataFrame(b *testing.B, rows int) *dataframe.DataFrame {
	b.Helper()
	ids := make([]int64, rows)
	names := make([]string, rows)
	ages := make([]int64, rows)
	salaries := make([]float64, rows)
	active := make([]bool, rows)

	for i := range rows {
		ids[i] = int64(i)
		names[i] = fmt.Sprintf("Person_%d", i)
		ages[i] = int64(25 + (i % 40))
		salaries[i] = 30000.0 + (float64(i) * 100.0)
		active[i] = i%2 == 0
	}

	df, err := dataframe.New(
		series.New("id", ids),
		series.New("name", names),
		series.New("age", ages),
		series.New("salary", salaries),
		series.New("active", active),
	)
	if err != nil {
		b.Fatal(err)
	}
	return df
}
