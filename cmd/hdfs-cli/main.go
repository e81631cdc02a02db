// Package main provides a CLI for browsing a remote HDFS service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/DanielJanik/webhdfs/internal/config"
	"github.com/DanielJanik/webhdfs/internal/logging"
	"github.com/DanielJanik/webhdfs/pkg/hdfs"
)

func main() {
	cfg := config.Load()

	host := flag.String("host", cfg.Host, "HDFS host (may embed a port)")
	port := flag.Int("port", cfg.Port, "HDFS port")
	protocol := flag.String("protocol", cfg.Protocol, "http or https")
	user := flag.String("user", cfg.User, "Remote user name")
	password := flag.String("password", cfg.Password, "Gateway password (enables TLS)")
	basePath := flag.String("path", cfg.BasePath, "REST prefix")
	timeout := flag.Duration("timeout", cfg.Timeout, "Request timeout")
	maxBytes := flag.Int64("n", 0, "Byte limit for head")
	maxLines := flag.Int("l", 10, "Line limit for lines")
	recursive := flag.Bool("r", false, "Recursive delete")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")

	flag.Parse()

	if err := logging.Init(logging.Config{Level: *logLevel, Format: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	opts := hdfs.Options{
		Host:     *host,
		Port:     *port,
		Protocol: *protocol,
		User:     *user,
		Path:     *basePath,
		Timeout:  *timeout,
	}
	if *password != "" {
		opts.Protocol = "https"
		opts.Auth = &hdfs.Credentials{User: *user, Pass: *password}
	}
	source := hdfs.Build(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := args[0]
	cmdArgs := args[1:]

	var err error
	switch cmd {
	case "ls", "list":
		err = cmdList(ctx, source, cmdArgs)
	case "mkdir":
		err = cmdMkdir(ctx, source, cmdArgs)
	case "cat":
		err = cmdCat(ctx, source, cmdArgs, 0)
	case "head":
		err = cmdCat(ctx, source, cmdArgs, *maxBytes)
	case "lines":
		err = cmdLines(ctx, source, cmdArgs, *maxLines)
	case "put":
		err = cmdPut(ctx, source, cmdArgs)
	case "rm", "delete":
		err = cmdDelete(ctx, source, cmdArgs, *recursive)
	case "exists":
		err = cmdExists(ctx, source, cmdArgs)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func one(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}

func cmdList(ctx context.Context, source hdfs.FileSource, args []string) error {
	path := hdfs.RootPath
	if len(args) > 0 {
		path = args[0]
	}

	files, err := source.Enumerate(ctx, path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, f := range files {
		kind := "file"
		if f.IsDirectory {
			kind = "dir"
		}
		fmt.Fprintf(w, "%s\t%s\n", kind, f.Path)
	}
	return w.Flush()
}

func cmdMkdir(ctx context.Context, source hdfs.FileSource, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mkdir <name> <basePath>")
	}
	return source.Mkdir(ctx, args[0], args[1])
}

func cmdCat(ctx context.Context, source hdfs.FileSource, args []string, maxBytes int64) error {
	path, err := one(args, "cat|head <path>")
	if err != nil {
		return err
	}
	if maxBytes > 0 {
		data, err := source.ReadFile(ctx, path, maxBytes)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}

	rc, err := source.OpenReadStream(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(os.Stdout, rc)
	return err
}

func cmdLines(ctx context.Context, source hdfs.FileSource, args []string, maxLines int) error {
	path, err := one(args, "lines <path>")
	if err != nil {
		return err
	}
	data, err := source.ReadFileLines(ctx, path, maxLines)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	fmt.Println()
	return nil
}

func cmdPut(ctx context.Context, source hdfs.FileSource, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: put <localPath> <remoteDir>")
	}
	start := time.Now()
	location, err := source.WriteFile(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded to %s in %s\n", location, time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdDelete(ctx context.Context, source hdfs.FileSource, args []string, recursive bool) error {
	path, err := one(args, "rm [-r] <path>")
	if err != nil {
		return err
	}
	return source.Delete(ctx, path, recursive)
}

func cmdExists(ctx context.Context, source hdfs.FileSource, args []string) error {
	path, err := one(args, "exists <path>")
	if err != nil {
		return err
	}
	exists, err := source.Exists(ctx, path)
	if err != nil {
		return err
	}
	fmt.Println(exists)
	return nil
}

func printUsage() {
	fmt.Println(`hdfs-cli — browse a remote HDFS service over WebHDFS

Usage: hdfs-cli [flags] <command> [args]

Flags:
  -host <host>       HDFS host, may embed a port ("namenode:50070")
  -port <port>       HDFS port (default: 50070)
  -protocol <p>      http or https (default: http)
  -user <name>       Remote user name
  -password <pass>   Gateway password; switches to https
  -path <prefix>     REST prefix (default: /webhdfs/v1)
  -timeout <d>       Request timeout (default: 30s)
  -n <bytes>         Byte limit for head
  -l <lines>         Line limit for lines (default: 10)
  -r                 Recursive delete
  -log-level <lvl>   debug, info, warn, error

Commands:
  ls [path]            List a directory
  mkdir <name> <base>  Create a directory
  cat <path>           Print a file
  head -n <bytes> <path>   Print at most n bytes
  lines -l <n> <path>  Print the first n lines
  put <local> <dir>    Upload a local file
  rm [-r] <path>       Delete a file or directory
  exists <path>        Check existence

Environment: HDFS_HOST, HDFS_PORT, HDFS_PROTOCOL, HDFS_USER,
HDFS_PASSWORD, HDFS_PATH, HDFS_TIMEOUT_MS, LOG_LEVEL, LOG_FORMAT`)
}
