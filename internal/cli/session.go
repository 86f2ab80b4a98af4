package cli

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/kv"
	"github.com/roach88/carta/internal/menu"
	"github.com/roach88/carta/internal/seed"
	"github.com/roach88/carta/internal/store"
)

// storageTimeout bounds each read or write against the database.
const storageTimeout = 5 * time.Second

// session is an open database plus the catalog of one namespace.
type session struct {
	store   *store.Store
	catalog *catalog.Catalog
}

// openSession opens the database and loads the namespace, seeding it on
// first use. Failures are reported through formatter.
func openSession(opts *RootOptions, formatter *OutputFormatter) (*session, error) {
	seeds, err := loadSeeds(opts.Seed)
	if err != nil {
		return nil, formatter.Fail(ErrCodeSeed, "failed to load seed", err)
	}

	slog.Debug("opening database", "path", opts.Database, "namespace", opts.Namespace)
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, formatter.Fail(ErrCodeStorage, "failed to open database", err)
	}

	logger := slog.Default().With("namespace", opts.Namespace)
	storage := kv.New(st.Namespace(opts.Namespace),
		kv.WithLogger(logger),
		kv.WithTimeout(storageTimeout),
	)
	cat := catalog.Open(storage,
		catalog.WithLogger(logger),
		catalog.WithStoreOptions(menu.WithSeeds(seeds)),
	)

	return &session{store: st, catalog: cat}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func loadSeeds(name string) (*seed.Data, error) {
	switch name {
	case "", "builtin":
		return seed.Builtin(), nil
	case "empty":
		return seed.Empty(), nil
	default:
		return seed.LoadFile(name)
	}
}

// parseID parses a dish or category identifier argument.
func parseID(formatter *OutputFormatter, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, formatter.Fail(ErrCodeArgs, "invalid id "+strconv.Quote(raw), nil)
	}
	return id, nil
}

// parseInt parses an integer argument such as a quantity or party size.
func parseInt(formatter *OutputFormatter, name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, formatter.Fail(ErrCodeArgs, "invalid "+name+" "+strconv.Quote(raw), nil)
	}
	return n, nil
}
