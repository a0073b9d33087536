package warehouse

import (
	"database/sql"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/snowflakedb/gosnowflake"

	"github.com/de-tools/cloud-billing-report/pkg/services/registry"
)

var supportedDrivers = map[string]struct{}{
	"databricks": {},
	"snowflake":  {},
}

// Open connects to the warehouse described by a DSN profile. Only drivers
// registered above are accepted; a typo in the profiles file should fail here,
// not as an opaque sql.Open panic.
func Open(profile registry.WarehouseProfile) (*sql.DB, error) {
	if _, ok := supportedDrivers[profile.Driver]; !ok {
		return nil, fmt.Errorf("unsupported warehouse driver %q in profile %s", profile.Driver, profile.Name)
	}

	db, err := sql.Open(profile.Driver, profile.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", profile.Driver, err)
	}
	return db, nil
}
