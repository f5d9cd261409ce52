package results

// Config defines settings for result sinks.
type Config struct {
	// CSVDir enables the CSV sink when non-empty; files are written there.
	CSVDir string `json:"csv_dir"`

	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}
