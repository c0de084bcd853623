package historical

import (
	"context"
	"fmt"
	"time"

	"github.com/aosanya/liftkernel/internal/kernel"
	driver "github.com/arangodb/go-driver"
	arangohttp "github.com/arangodb/go-driver/http"
	"github.com/sirupsen/logrus"
)

const historyCollection = "lift_station_history"

// ArangoConfig configures the ArangoDB-backed dataset.
type ArangoConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// ArangoDataset reads SystemState rows from an ArangoDB collection
// indexed by an integer "row" field. It never writes.
type ArangoDataset struct {
	db     driver.Database
	logger *logrus.Logger
}

// historyDoc is the on-disk shape of one historical row.
type historyDoc struct {
	Row                       int     `json:"row"`
	TimestampUnix             int64   `json:"timestamp_unix"`
	L1M                       float64 `json:"L1_m"`
	VM3                       float64 `json:"V_m3"`
	F1M3Per15Min              float64 `json:"F1_m3_per_15min"`
	F2M3H                     float64 `json:"F2_m3h"`
	ElectricityPriceEURPerKWh float64 `json:"electricity_price_eur_kwh"`
	PriceScenario             string  `json:"price_scenario"`
}

func (d historyDoc) toState() kernel.SystemState {
	return kernel.SystemState{
		Timestamp:                 time.Unix(d.TimestampUnix, 0).UTC(),
		L1M:                       d.L1M,
		VM3:                       d.VM3,
		F1M3Per15Min:              d.F1M3Per15Min,
		F2M3H:                     d.F2M3H,
		ElectricityPriceEURPerKWh: d.ElectricityPriceEURPerKWh,
		PriceScenario:             kernel.PriceScenario(d.PriceScenario),
		HistoryIndex:              d.Row,
	}
}

// NewArangoDataset connects to ArangoDB and ensures the history
// collection exists, following the teacher's connection-construction
// shape (driver.ClientConfig over an http.Connection).
func NewArangoDataset(cfg ArangoConfig, logger *logrus.Logger) (*ArangoDataset, error) {
	conn, err := arangohttp.NewConnection(arangohttp.ConnectionConfig{
		Endpoints: []string{fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)},
	})
	if err != nil {
		return nil, fmt.Errorf("historical: create connection: %w", err)
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(cfg.Username, cfg.Password),
	})
	if err != nil {
		return nil, fmt.Errorf("historical: create client: %w", err)
	}

	ctx := context.Background()
	db, err := ensureDatabase(ctx, client, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("historical: ensure database: %w", err)
	}
	if err := ensureCollection(ctx, db, historyCollection); err != nil {
		return nil, fmt.Errorf("historical: ensure collection: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("historical: connected to ArangoDB")

	return &ArangoDataset{db: db, logger: logger}, nil
}

func ensureDatabase(ctx context.Context, client driver.Client, name string) (driver.Database, error) {
	exists, err := client.DatabaseExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return client.Database(ctx, name)
	}
	return client.CreateDatabase(ctx, name, nil)
}

func ensureCollection(ctx context.Context, db driver.Database, name string) error {
	exists, err := db.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.CreateCollection(ctx, name, nil)
	return err
}

func (a *ArangoDataset) StateAt(ctx context.Context, index int) (kernel.SystemState, error) {
	query := fmt.Sprintf("FOR d IN %s FILTER d.row == @row LIMIT 1 RETURN d", historyCollection)
	cursor, err := a.db.Query(ctx, query, map[string]interface{}{"row": index})
	if err != nil {
		return kernel.SystemState{}, fmt.Errorf("historical: query state_at: %w", err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return kernel.SystemState{}, ErrOutOfRange
	}
	var doc historyDoc
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return kernel.SystemState{}, fmt.Errorf("historical: read state_at: %w", err)
	}
	return doc.toState(), nil
}

func (a *ArangoDataset) InflowWindow(ctx context.Context, index, n int) ([]float64, error) {
	start := index - n + 1
	if start < 0 {
		start = 0
	}
	query := fmt.Sprintf(
		"FOR d IN %s FILTER d.row >= @start AND d.row <= @end SORT d.row ASC RETURN d.F1_m3_per_15min",
		historyCollection,
	)
	cursor, err := a.db.Query(ctx, query, map[string]interface{}{"start": start, "end": index})
	if err != nil {
		return nil, fmt.Errorf("historical: query inflow window: %w", err)
	}
	defer cursor.Close()

	window := make([]float64, 0, n)
	for cursor.HasMore() {
		var v float64
		if _, err := cursor.ReadDocument(ctx, &v); err != nil {
			return nil, fmt.Errorf("historical: read inflow window: %w", err)
		}
		window = append(window, v)
	}
	return window, nil
}

func (a *ArangoDataset) Len(ctx context.Context) (int, error) {
	query := fmt.Sprintf("RETURN LENGTH(%s)", historyCollection)
	cursor, err := a.db.Query(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("historical: query length: %w", err)
	}
	defer cursor.Close()

	var count int
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &count); err != nil {
			return 0, fmt.Errorf("historical: read length: %w", err)
		}
	}
	return count, nil
}
