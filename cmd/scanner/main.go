// scanner es la consola de operador en terminal: cada línea leída de stdin (lector de códigos
// tipo teclado) registra una salida contra la API; las líneas que empiezan con ":" son comandos.
//
// Uso: SCANNER_API_URL=http://localhost:8080 go run ./cmd/scanner
//
// Comandos: :create nombre sku [stock] (el nombre puede tener espacios), :restock sku [qty], :qty n, :reason texto,
// :list, :moves, :stop, :start, :quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jhoicas/merch-stock/internal/client"
	"github.com/jhoicas/merch-stock/internal/console"
	"github.com/jhoicas/merch-stock/internal/scanner"
	"github.com/jhoicas/merch-stock/pkg/config"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

const codeBuffer = 32

type session struct {
	ctx   context.Context
	cons  *console.Console
	scan  *scanner.Scanner
	codes chan string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "scanner", Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.Scanner.APIURL, client.WithTimeout(10*time.Second))
	if err := api.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "API no disponible en %s: %v\n", cfg.Scanner.APIURL, err)
		os.Exit(1)
	}
	if cfg.Scanner.Username != "" {
		if err := api.Login(ctx, cfg.Scanner.Username, cfg.Scanner.Password); err != nil {
			fmt.Fprintf(os.Stderr, "Login: %v\n", err)
			os.Exit(1)
		}
	}

	codes := make(chan string, codeBuffer)
	source := scanner.NewLineSource(codes)
	scan := scanner.New(source.Open,
		scanner.WithPrefix(cfg.Labels.CodePrefix),
		scanner.WithLogger(log.Component("scanner")),
	)
	cons := console.New(api, scan,
		console.ScanSettings{Qty: cfg.Scanner.Qty, Reason: cfg.Scanner.Reason},
		console.WithNoticeHandler(printNotice),
		console.WithLogger(log.Component("console")),
	)

	s := &session{ctx: ctx, cons: cons, scan: scan, codes: codes}
	if err := cons.Refresh(ctx); err == nil {
		_ = console.WriteProducts(os.Stdout, cons)
	}
	s.start()

	for line := range scanner.ReadLines(ctx, os.Stdin) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := s.command(line); quit {
				break
			}
			continue
		}
		s.code(line)
	}

	_ = scan.Stop()
	close(codes)
	fmt.Println("consola cerrada")
}

func (s *session) start() {
	if err := s.scan.Start(s.ctx); err != nil {
		fmt.Println("! iniciar escaneo:", err)
		return
	}
	go s.cons.ScanLoop(s.ctx)
	settings := s.cons.ScanSettings()
	fmt.Printf("escaneando (qty=%d, motivo=%q)\n", settings.Qty, settings.Reason)
}

func (s *session) stop() {
	if err := s.scan.Stop(); err != nil {
		fmt.Println("! detener escaneo:", err)
	}
	// Códigos en cola de la sesión anterior no deben consumirse en la siguiente.
	for {
		select {
		case <-s.codes:
		default:
			fmt.Println("escaneo detenido")
			return
		}
	}
}

func (s *session) code(line string) {
	if !s.scan.Running() {
		fmt.Println("! escaneo detenido, use :start")
		return
	}
	select {
	case s.codes <- line:
	default:
		fmt.Println("! cola de lectura llena, código descartado:", line)
	}
}

// command ejecuta un comando de consola; devuelve true para salir.
func (s *session) command(line string) bool {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]
	switch fields[0] {
	case "quit", "q":
		return true
	case "start":
		s.start()
	case "stop":
		s.stop()
	case "list":
		if err := s.cons.Refresh(s.ctx); err == nil {
			_ = console.WriteProducts(os.Stdout, s.cons)
		}
	case "moves":
		if err := s.cons.Refresh(s.ctx); err == nil {
			_ = console.WriteMovements(os.Stdout, s.cons)
		}
	case "create":
		form, ok := parseCreate(args)
		if !ok {
			fmt.Println("uso: :create nombre sku [stock]")
			return false
		}
		s.cons.SetForm(form)
		if _, err := s.cons.SubmitForm(s.ctx); err == nil {
			_ = console.WriteProducts(os.Stdout, s.cons)
		}
	case "restock":
		if len(args) < 1 {
			fmt.Println("uso: :restock sku [qty]")
			return false
		}
		qty := 1
		if len(args) > 1 {
			qty = atoiOr(args[1], 1)
		}
		if out, err := s.cons.Restock(s.ctx, args[0], qty); err == nil {
			fmt.Printf("%s: quedan %d\n", out.SKU, out.Stock)
		}
	case "qty":
		settings := s.cons.ScanSettings()
		if len(args) > 0 {
			settings.Qty = atoiOr(args[0], settings.Qty)
		}
		s.cons.SetScanSettings(settings)
		fmt.Println("cantidad por escaneo:", s.cons.ScanSettings().Qty)
	case "reason":
		settings := s.cons.ScanSettings()
		settings.Reason = strings.Join(args, " ")
		s.cons.SetScanSettings(settings)
		fmt.Printf("motivo: %q\n", s.cons.ScanSettings().Reason)
	default:
		fmt.Println("comando desconocido:", fields[0])
	}
	return false
}

// parseCreate toma sku y stock opcional del final; el resto es el nombre, que puede tener espacios.
func parseCreate(args []string) (console.Form, bool) {
	var form console.Form
	if len(args) >= 3 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			form.Stock = n
			args = args[:len(args)-1]
		}
	}
	if len(args) < 2 {
		return console.Form{}, false
	}
	form.SKU = args[len(args)-1]
	form.Name = strings.Join(args[:len(args)-1], " ")
	return form, true
}

func printNotice(n console.Notice) {
	prefix := "·"
	if n.Level == console.LevelError {
		prefix = "!"
	}
	fmt.Printf("%s %s %s\n", n.At.Format("15:04:05"), prefix, n.Message)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
