package builder

import (
	"github.com/go-viper/mapstructure/v2"
)

// The raw* types mirror the accepted YAML shapes. They are decoded with
// weak typing so "true"/"1" style scalars are accepted, then converted into
// domain entities by parse.go.

type rawDataModel struct {
	Name       string `mapstructure:"name"`
	Catalog    string `mapstructure:"catalog"`
	Database   string `mapstructure:"database"`
	Schema     string `mapstructure:"schema"`
	SchemaName string `mapstructure:"schema_name"`
	Table      string `mapstructure:"table"`
	Connection string `mapstructure:"connection"`
}

type rawSemanticModel struct {
	Name         string           `mapstructure:"name"`
	Model        string           `mapstructure:"model"`
	Label        string           `mapstructure:"label"`
	Description  string           `mapstructure:"description"`
	Entities     []map[string]any `mapstructure:"entities"`
	Dimensions   []map[string]any `mapstructure:"dimensions"`
	Measures     []map[string]any `mapstructure:"measures"`
	Metrics      []map[string]any `mapstructure:"metrics"`
	DateSelector any              `mapstructure:"date_selector"`
	Meta         map[string]any   `mapstructure:"meta"`
}

type rawEntity struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Expr     string `mapstructure:"expr"`
	Label    string `mapstructure:"label"`
	Complete bool   `mapstructure:"complete"`
}

type rawTypeParams struct {
	TimeGranularity string `mapstructure:"time_granularity"`
}

type rawDimension struct {
	Name           string            `mapstructure:"name"`
	Type           string            `mapstructure:"type"`
	Expr           string            `mapstructure:"expr"`
	Label          string            `mapstructure:"label"`
	Description    string            `mapstructure:"description"`
	Granularity    string            `mapstructure:"granularity"`
	TypeParams     rawTypeParams     `mapstructure:"type_params"`
	PrimaryVariant string            `mapstructure:"primary_variant"`
	Variants       map[string]string `mapstructure:"variants"`
	Group          string            `mapstructure:"group"`
	Hidden         bool              `mapstructure:"hidden"`
	DateSelector   bool              `mapstructure:"date_selector"`
	Meta           map[string]any    `mapstructure:"meta"`
}

type rawAggParams struct {
	Percentile float64 `mapstructure:"percentile"`
}

type rawMeasure struct {
	Name        string         `mapstructure:"name"`
	Agg         string         `mapstructure:"agg"`
	Expr        string         `mapstructure:"expr"`
	Label       string         `mapstructure:"label"`
	Description string         `mapstructure:"description"`
	Format      string         `mapstructure:"format"`
	Group       string         `mapstructure:"group"`
	Hidden      bool           `mapstructure:"hidden"`
	Filter      any            `mapstructure:"filter"`
	AggParams   rawAggParams   `mapstructure:"agg_params"`
	Meta        map[string]any `mapstructure:"meta"`
}

type rawPoP struct {
	Comparisons   []string `mapstructure:"comparisons"`
	Outputs       []string `mapstructure:"outputs"`
	DateDimension string   `mapstructure:"date_dimension"`
}

type rawConversion struct {
	Entity            string `mapstructure:"entity"`
	BaseMeasure       any    `mapstructure:"base_measure"`
	ConversionMeasure any    `mapstructure:"conversion_measure"`
	Window            string `mapstructure:"window"`
}

type rawMetricParams struct {
	Measure     any    `mapstructure:"measure"`
	Numerator   any    `mapstructure:"numerator"`
	Denominator any    `mapstructure:"denominator"`
	Expr        string `mapstructure:"expr"`
	Metrics     []any  `mapstructure:"metrics"`
}

type rawMetric struct {
	Name        string         `mapstructure:"name"`
	Type        string         `mapstructure:"type"`
	Label       string         `mapstructure:"label"`
	Description string         `mapstructure:"description"`
	Format      string         `mapstructure:"format"`
	Group       string         `mapstructure:"group"`
	Entity      string         `mapstructure:"entity"`
	Filter      any            `mapstructure:"filter"`
	PoP         *rawPoP        `mapstructure:"pop"`
	Conversion  *rawConversion `mapstructure:"conversion"`
	Measure     any            `mapstructure:"measure"`
	Numerator   any            `mapstructure:"numerator"`
	Denominator any            `mapstructure:"denominator"`
	Expr        string         `mapstructure:"expr"`
	Metrics     []any          `mapstructure:"metrics"`
	// TypeParams carries the same keys as the top level in the dbt style
	TypeParams *rawMetricParams `mapstructure:"type_params"`
	Meta       map[string]any   `mapstructure:"meta"`
}

type rawFilterCondition struct {
	Field    string `mapstructure:"field"`
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
