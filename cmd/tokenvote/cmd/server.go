package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/inconshreveable/log15"
	isatty "github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	"github.com/tokenvote/tokenvote/lib/attestation"
	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/metrics"
	"github.com/tokenvote/tokenvote/lib/network"
	"github.com/tokenvote/tokenvote/lib/network/api"
	"github.com/tokenvote/tokenvote/lib/network/httpcache"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
	"github.com/tokenvote/tokenvote/lib/tally"

	cmdcommon "github.com/tokenvote/tokenvote/cmd/tokenvote/common"
)

const defaultBind string = "0.0.0.0:12345"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagBind                string = common.GetENVValue("TOKENVOTE_BIND", defaultBind)
	flagStorageConfigString string
	flagRoundsFile          string = common.GetENVValue("TOKENVOTE_ROUNDS", "")
	flagTLSCertFile         string = common.GetENVValue("TOKENVOTE_TLS_CERT", "")
	flagTLSKeyFile          string = common.GetENVValue("TOKENVOTE_TLS_KEY", "")
	flagLogLevel            string = common.GetENVValue("TOKENVOTE_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput           string = common.GetENVValue("TOKENVOTE_LOG_OUTPUT", "")
	flagVerbose             bool   = common.GetENVValue("TOKENVOTE_VERBOSE", "0") == "1"
	flagHTTPCacheAdapter    string = common.GetENVValue("TOKENVOTE_HTTP_CACHE_ADAPTER", "")
	flagHTTPCacheRedisAddrs cmdcommon.ListFlags
	flagAttestationEndpoint string = common.GetENVValue("TOKENVOTE_ATTESTATION_ENDPOINT", "")
	flagNTPServer           string = common.GetENVValue("TOKENVOTE_NTP_SERVER", "")
)

var (
	serverCmd *cobra.Command

	storageConfig *storage.Config
	logLevel      logging.Lvl
	log           logging.Logger
)

func init() {
	var err error

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Run the voting server",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsServer()

			runServer()
			return
		},
	}

	// storage
	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		cmdcommon.PrintFlagsError(serverCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(serverCmd, "--storage", err)
	}
	flagStorageConfigString = common.GetENVValue("TOKENVOTE_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	serverCmd.Flags().StringVar(&flagBind, "bind", flagBind, "address to listen on ('0.0.0.0:12345')")
	serverCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	serverCmd.Flags().StringVar(&flagRoundsFile, "rounds", flagRoundsFile, "round configuration yaml file")
	serverCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	serverCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	serverCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	serverCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	serverCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	serverCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter: 'mem' or 'redis'")
	serverCmd.Flags().Var(&flagHTTPCacheRedisAddrs, "http-cache-redis-addrs", "redis address: '<name>=<host>:<port>'")
	serverCmd.Flags().StringVar(&flagAttestationEndpoint, "attestation-endpoint", flagAttestationEndpoint, "attestation service endpoint")
	serverCmd.Flags().StringVar(&flagNTPServer, "ntp-server", flagNTPServer, "ntp server for deadline decisions")

	rootCmd.AddCommand(serverCmd)
}

func parseFlagsServer() {
	var err error

	if len(flagTLSCertFile) > 0 {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(serverCmd, "--tls-cert", err)
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(serverCmd, "--tls-key", err)
		}
	}

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		cmdcommon.PrintFlagsError(serverCmd, "--storage", err)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(serverCmd, "--log-level", err)
	}

	var logHandler logging.Handler

	var formatter logging.Format
	if isatty.IsTerminal(os.Stdout.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler = logging.StreamHandler(os.Stdout, formatter)

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, logging.JsonFormat()); err != nil {
			cmdcommon.PrintFlagsError(serverCmd, "--log-output", err)
		}
	}

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	ballot.SetLogging(logLevel, logHandler)
	tally.SetLogging(logLevel, logHandler)
	attestation.SetLogging(logLevel, logHandler)
	api.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)

	log.Info("Starting tokenvote")

	// print flags
	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tbind", flagBind)
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageConfigString)
	parsedFlags = append(parsedFlags, "\n\trounds", flagRoundsFile)
	parsedFlags = append(parsedFlags, "\n\ttls-cert", flagTLSCertFile)
	parsedFlags = append(parsedFlags, "\n\ttls-key", flagTLSKeyFile)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)
	parsedFlags = append(parsedFlags, "\n\thttp-cache-adapter", flagHTTPCacheAdapter)
	parsedFlags = append(parsedFlags, "\n\tattestation-endpoint", flagAttestationEndpoint)
	parsedFlags = append(parsedFlags, "\n\tntp-server", flagNTPServer)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}
}

func parseRedisAddrs() map[string]string {
	addrs := map[string]string{}
	for _, entry := range flagHTTPCacheRedisAddrs {
		parsed := strings.SplitN(entry, "=", 2)
		if len(parsed) != 2 {
			cmdcommon.PrintFlagsError(serverCmd, "--http-cache-redis-addrs", fmt.Errorf("expected '<name>=<addr>': '%s'", entry))
		}
		addrs[parsed[0]] = parsed[1]
	}
	return addrs
}

func runServer() {
	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)

		os.Exit(1)
	}
	defer st.Close()

	if len(flagRoundsFile) > 0 {
		configs, err := round.LoadConfigsFromFile(flagRoundsFile)
		if err != nil {
			cmdcommon.PrintError(serverCmd, err)
		}
		for _, config := range configs {
			if err := config.Save(st); err != nil {
				log.Crit("failed to save round config", "round", config.Round, "error", err)
				os.Exit(1)
			}
			log.Info("round configured", "round", config.Round, "strategy", config.Strategy.String())
		}
	}

	var clock common.Clock = common.LocalClock{}
	if len(flagNTPServer) > 0 {
		ntpClock, err := common.NewNTPClock(flagNTPServer)
		if err != nil {
			log.Crit("failed to query ntp server", "server", flagNTPServer, "error", err)
			os.Exit(1)
		}
		clock = ntpClock
		log.Info("using ntp clock", "server", flagNTPServer, "offset", ntpClock.Offset())
	}

	processConfig := common.NewConfig()
	processConfig.HTTPCacheAdapter = flagHTTPCacheAdapter
	processConfig.HTTPCacheRedisAddrs = parseRedisAddrs()
	processConfig.AttestationEndpoint = flagAttestationEndpoint

	var approval ballot.ApprovalChecker = ballot.ApproveAll{}
	var metadata api.MetadataResolver
	if len(flagAttestationEndpoint) > 0 {
		attestationClient, err := attestation.NewClient(
			processConfig.AttestationEndpoint,
			processConfig.AttestationTimeout,
			processConfig.AttestationRetries,
		)
		if err != nil {
			log.Crit("failed to create attestation client", "error", err)
			os.Exit(1)
		}
		defer attestationClient.Close()
		approval = attestationClient
		metadata = attestationClient
	} else {
		log.Warn("no attestation endpoint; every voter passes the approval check")
	}

	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	store := ballot.NewStore(st, clock, approval)
	apiHandler := api.NewNetworkHandlerAPI(st, store, processConfig, clock)
	if metadata != nil {
		apiHandler.SetMetadataResolver(metadata)
	}

	var cacheClient *httpcache.Client
	if adapter, err := httpcache.NewAdapter(processConfig); err != nil {
		cmdcommon.PrintFlagsError(serverCmd, "--http-cache-adapter", err)
	} else if adapter != nil {
		cacheClient, err = httpcache.NewClient(
			httpcache.WithAdapter(adapter),
			httpcache.WithExpire(processConfig.HTTPCacheExpire),
			httpcache.WithLogger(log),
		)
		if err != nil {
			log.Crit("failed to create http cache", "error", err)
			os.Exit(1)
		}
		apiHandler.SetCache(cacheClient)
	}

	serverConfig := network.NewServerConfig(flagBind)
	serverConfig.TLSCertFile = flagTLSCertFile
	serverConfig.TLSKeyFile = flagTLSKeyFile

	server, err := network.NewServer(serverConfig, apiHandler, processConfig, cacheClient)
	if err != nil {
		log.Crit("failed to create server", "error", err)
		os.Exit(1)
	}

	// Execution group.
	var g run.Group
	{
		g.Add(func() error {
			if err := server.Start(); err != nil {
				log.Crit("failed to start server", "error", err)
				return err
			}
			return nil
		}, func(error) {
			server.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
