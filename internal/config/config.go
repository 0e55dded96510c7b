package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/ark-network/htlc/internal/infrastructure/db"
	pgdb "github.com/ark-network/htlc/internal/infrastructure/db/postgres"
	sqlitedb "github.com/ark-network/htlc/internal/infrastructure/db/sqlite"
	schnorridentity "github.com/ark-network/htlc/internal/infrastructure/identity/schnorr"
	inmemorylivestore "github.com/ark-network/htlc/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/ark-network/htlc/internal/infrastructure/live-store/redis"
	timescheduler "github.com/ark-network/htlc/internal/infrastructure/scheduler/gocron"
	inmemorytransport "github.com/ark-network/htlc/internal/infrastructure/transport/inmemory"
	redistransport "github.com/ark-network/htlc/internal/infrastructure/transport/redis"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	supportedEventDbs = supportedType{
		"badger": {},
	}
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedLiveStores = supportedType{
		"inmemory": {},
		"redis":    {},
	}
	supportedTransports = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	NoTLS    bool
	LogLevel int

	TLSExtraIPs     []string
	TLSExtraDomains []string

	DbType        string
	EventDbType   string
	DbDir         string
	DbUrl         string
	EventDbDir    string
	LiveStoreType string
	TransportType string
	RedisUrl      string
	SchedulerType string

	PartyId    string
	PrivateKey string `json:"-"`
	Parties    map[string]string

	SessionTimeout     time.Duration
	LockersCosignClaim bool
	ClaimReceipts      bool
	AutoUnlock         bool
	ProposalRateLimit  float64

	OtelCollectorEndpoint string

	repo      ports.RepoManager
	svc       application.Service
	identity  ports.IdentityService
	transport ports.Transport
	scheduler ports.SchedulerService
	liveStore ports.LiveStore
	redis     *redis.Client
	clock     clock.Clock
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir               = "DATADIR"
	Port                  = "PORT"
	LogLevel              = "LOG_LEVEL"
	NoTLS                 = "NO_TLS"
	TLSExtraIP            = "TLS_EXTRA_IP"
	TLSExtraDomain        = "TLS_EXTRA_DOMAIN"
	DbType                = "DB_TYPE"
	EventDbType           = "EVENT_DB_TYPE"
	DbUrl                 = "DB_URL"
	LiveStoreType         = "LIVE_STORE_TYPE"
	RedisUrl              = "REDIS_URL"
	TransportType         = "TRANSPORT_TYPE"
	SchedulerType         = "SCHEDULER_TYPE"
	PartyId               = "PARTY_ID"
	PrivateKey            = "PRIVATE_KEY"
	Parties               = "PARTIES"
	SessionTimeout        = "SESSION_TIMEOUT"
	LockersCosignClaim    = "LOCKERS_COSIGN_CLAIM"
	ClaimReceipts         = "CLAIM_RECEIPTS"
	AutoUnlock            = "AUTO_UNLOCK"
	ProposalRateLimit     = "PROPOSAL_RATE_LIMIT"
	OtelCollectorEndpoint = "OTEL_COLLECTOR_ENDPOINT"

	defaultDatadir            = btcutil.AppDataDir("htlcd", false)
	DefaultPort               = 7171
	defaultLogLevel           = 4
	defaultNoTLS              = true
	defaultDbType             = "badger"
	defaultEventDbType        = "badger"
	defaultLiveStoreType      = "inmemory"
	defaultTransportType      = "redis"
	defaultRedisUrl           = "redis://localhost:6379/0"
	defaultSchedulerType      = "gocron"
	defaultSessionTimeout     = 30 * time.Second
	defaultLockersCosignClaim = false
	defaultClaimReceipts      = true
	defaultAutoUnlock         = false
	defaultProposalRateLimit  = 0
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("HTLC")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(NoTLS, defaultNoTLS)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(EventDbType, defaultEventDbType)
	viper.SetDefault(LiveStoreType, defaultLiveStoreType)
	viper.SetDefault(TransportType, defaultTransportType)
	viper.SetDefault(RedisUrl, defaultRedisUrl)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(SessionTimeout, defaultSessionTimeout)
	viper.SetDefault(LockersCosignClaim, defaultLockersCosignClaim)
	viper.SetDefault(ClaimReceipts, defaultClaimReceipts)
	viper.SetDefault(AutoUnlock, defaultAutoUnlock)
	viper.SetDefault(ProposalRateLimit, defaultProposalRateLimit)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")

	var dbUrl string
	if viper.GetString(DbType) == "postgres" {
		dbUrl = viper.GetString(DbUrl)
		if dbUrl == "" {
			return nil, fmt.Errorf("DB_URL not provided")
		}
	}

	parties, err := parseParties(viper.GetString(Parties))
	if err != nil {
		return nil, err
	}

	return &Config{
		Datadir:               viper.GetString(Datadir),
		Port:                  viper.GetUint32(Port),
		LogLevel:              viper.GetInt(LogLevel),
		NoTLS:                 viper.GetBool(NoTLS),
		TLSExtraIPs:           viper.GetStringSlice(TLSExtraIP),
		TLSExtraDomains:       viper.GetStringSlice(TLSExtraDomain),
		DbType:                viper.GetString(DbType),
		EventDbType:           viper.GetString(EventDbType),
		DbDir:                 dbPath,
		DbUrl:                 dbUrl,
		EventDbDir:            dbPath,
		LiveStoreType:         viper.GetString(LiveStoreType),
		TransportType:         viper.GetString(TransportType),
		RedisUrl:              viper.GetString(RedisUrl),
		SchedulerType:         viper.GetString(SchedulerType),
		PartyId:               viper.GetString(PartyId),
		PrivateKey:            viper.GetString(PrivateKey),
		Parties:               parties,
		SessionTimeout:        viper.GetDuration(SessionTimeout),
		LockersCosignClaim:    viper.GetBool(LockersCosignClaim),
		ClaimReceipts:         viper.GetBool(ClaimReceipts),
		AutoUnlock:            viper.GetBool(AutoUnlock),
		ProposalRateLimit:     viper.GetFloat64(ProposalRateLimit),
		OtelCollectorEndpoint: viper.GetString(OtelCollectorEndpoint),
	}, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// parseParties parses a comma separated list of <party id>=<hex pubkey>.
func parseParties(str string) (map[string]string, error) {
	parties := make(map[string]string)
	for _, entry := range strings.Split(str, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		party, pubkey, ok := strings.Cut(entry, "=")
		party, pubkey = strings.TrimSpace(party), strings.TrimSpace(pubkey)
		if !ok || party == "" || pubkey == "" {
			return nil, fmt.Errorf("invalid party %q, expected <id>=<pubkey>", entry)
		}
		if _, ok := parties[party]; ok {
			return nil, fmt.Errorf("duplicated party %s", party)
		}
		parties[party] = pubkey
	}
	return parties, nil
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf("event db type not supported, please select one of: %s", supportedEventDbs)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if !supportedLiveStores.supports(c.LiveStoreType) {
		return fmt.Errorf("live store type not supported, please select one of: %s", supportedLiveStores)
	}
	if !supportedTransports.supports(c.TransportType) {
		return fmt.Errorf("transport type not supported, please select one of: %s", supportedTransports)
	}
	if c.PartyId == "" {
		return fmt.Errorf("missing party id")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("missing private key")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("invalid session timeout, must be positive")
	}
	if c.ProposalRateLimit < 0 {
		return fmt.Errorf("invalid proposal rate limit, must not be negative")
	}

	c.clock = clock.NewDefaultClock()

	if err := c.identityService(); err != nil {
		return err
	}
	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.redisClient(); err != nil {
		return err
	}
	if err := c.liveStoreService(); err != nil {
		return err
	}
	if err := c.transportService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) identityService() error {
	svc, err := schnorridentity.NewService(c.PartyId, c.PrivateKey, c.Parties)
	if err != nil {
		return fmt.Errorf("invalid identity: %s", err)
	}
	c.identity = svc
	return nil
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
			return err
		}
		sqlDb, err := sqlitedb.OpenDb(filepath.Join(c.DbDir, "sqlite.db"))
		if err != nil {
			return err
		}
		dataStoreConfig = []interface{}{sqlDb}
	case "postgres":
		sqlDb, err := pgdb.OpenDb(c.DbUrl)
		if err != nil {
			return err
		}
		dataStoreConfig = []interface{}{sqlDb}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) redisClient() error {
	if c.LiveStoreType != "redis" && c.TransportType != "redis" {
		return nil
	}

	opts, err := redis.ParseURL(c.RedisUrl)
	if err != nil {
		return fmt.Errorf("invalid redis url: %s", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// nolint:errcheck
		rdb.Close()
		return fmt.Errorf("failed to connect to redis: %s", err)
	}

	c.redis = rdb
	return nil
}

func (c *Config) liveStoreService() error {
	var liveStoreSvc ports.LiveStore
	var err error
	switch c.LiveStoreType {
	case "inmemory":
		liveStoreSvc = inmemorylivestore.NewLiveStore()
	case "redis":
		liveStoreSvc = redislivestore.NewLiveStore(c.redis, 10)
	default:
		err = fmt.Errorf("unknown liveStore type")
	}
	if err != nil {
		return err
	}

	c.liveStore = liveStoreSvc
	return nil
}

func (c *Config) transportService() error {
	var svc ports.Transport
	var err error
	switch c.TransportType {
	case "inmemory":
		// Only parties running in this same process are reachable.
		svc, err = inmemorytransport.NewNetwork(0).Join(c.PartyId)
	case "redis":
		svc = redistransport.NewTransport(c.redis, c.PartyId)
	default:
		err = fmt.Errorf("unknown transport type")
	}
	if err != nil {
		return err
	}

	c.transport = svc
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler(c.clock)
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		application.Config{
			SessionTimeout:     c.SessionTimeout,
			LockersCosignClaim: c.LockersCosignClaim,
			ClaimReceipts:      c.ClaimReceipts,
			AutoUnlock:         c.AutoUnlock,
			ProposalRateLimit:  c.ProposalRateLimit,
		},
		c.identity, c.transport, c.repo, c.liveStore, c.scheduler,
		application.NewOwnershipHandlerRegistry(), c.clock,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
