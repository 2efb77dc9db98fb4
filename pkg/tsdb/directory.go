package tsdb

import "log"

// Namespace identifies one of the five sibling directories under the
// root "monitoring" directory. Raw per-second samples
// live directly in the root, so Raw's prefix is empty.
type Namespace int

const (
	NamespaceRaw Namespace = iota
	NamespaceAvailableMetrics
	NamespaceAvailableResources
	NamespacePerMinute
	NamespacePerHour
	NamespacePerDay
)

func (n Namespace) String() string {
	switch n {
	case NamespaceRaw:
		return "monitoring"
	case NamespaceAvailableMetrics:
		return "available_metrics"
	case NamespaceAvailableResources:
		return "available_resources"
	case NamespacePerMinute:
		return "metric_per_minute"
	case NamespacePerHour:
		return "metric_per_hour"
	case NamespacePerDay:
		return "metric_per_day"
	default:
		return "unknown"
	}
}

// namespacePrefix is the reserved byte that distinguishes each sibling
// directory's keyspace. Values are chosen outside [0x01,0x03] (the tuple
// element tags in tuple.go) so a namespace prefix can never be confused
// with a packed tuple element, and outside 0xFE (the system marker prefix
// below).
func (n Namespace) prefix() []byte {
	switch n {
	case NamespaceRaw:
		return nil
	case NamespaceAvailableMetrics:
		return []byte{0x11}
	case NamespaceAvailableResources:
		return []byte{0x12}
	case NamespacePerMinute:
		return []byte{0x13}
	case NamespacePerHour:
		return []byte{0x14}
	case NamespacePerDay:
		return []byte{0x15}
	default:
		return nil
	}
}

// systemPrefix marks directory-existence bookkeeping keys. It can never
// collide with a namespace prefix (0x11-0x15) or a tuple tag (0x01-0x03).
var systemPrefix = []byte{0xFE}

func markerKey(n Namespace) []byte {
	key := append([]byte{}, systemPrefix...)
	key = append(key, Tuple{n.String()}.Pack()...)
	return key
}

// Directories lazily creates and tracks the five sibling namespaces. All methods run inside an existing transaction: the
// caller is responsible for committing.
type Directories struct{}

// Exists reports whether namespace n has ever been created-or-opened.
func (Directories) Exists(t *Txn, n Namespace) (bool, error) {
	if n == NamespaceRaw {
		return true, nil
	}
	return t.Exists(markerKey(n))
}

// Open requires namespace n to already exist; used on the read path where
// a missing namespace is a retriable unavailability error.
func (Directories) Open(t *Txn, n Namespace) (*Error, error) {
	ok, err := (Directories{}).Exists(t, n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return notReady("%s directory doesn't exist.", n.String()), nil
	}
	return nil, nil
}

// CreateOrOpen marks namespace n as created if it is not already,
// logging the first creation.
func (Directories) CreateOrOpen(t *Txn, n Namespace) error {
	if n == NamespaceRaw {
		return nil
	}
	ok, err := (Directories{}).Exists(t, n)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := t.Set(markerKey(n), []byte{}); err != nil {
		return err
	}
	log.Printf("tsdb: created namespace %q", n.String())
	return nil
}

// prefixKey returns the packed key for tuple within namespace n's keyspace.
func prefixKey(n Namespace, tup Tuple) []byte {
	key := append([]byte{}, n.prefix()...)
	key = append(key, tup.Pack()...)
	return key
}
