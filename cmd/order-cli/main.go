package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/heladeria/order-form-api/form"
	"github.com/heladeria/order-form-api/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Optional; ORDER_API_URL may come from the shell
	_ = godotenv.Load()

	defaultURL := os.Getenv("ORDER_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	apiURL := flag.String("api", defaultURL, "base URL of the order API")
	timeout := flag.Duration("timeout", 20*time.Second, "HTTP timeout per request")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := form.NewClient(*apiURL, form.WithTimeout(*timeout))
	if err := run(ctx, form.NewForm(client), os.Stdin, os.Stdout); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drives one form through as many orders as the user wants to place
func run(ctx context.Context, f *form.Form, in io.Reader, out io.Writer) error {
	p := &prompter{scanner: bufio.NewScanner(in), out: out}

	fmt.Fprintln(out, "🍦 Heladería - nuevo pedido")
	fmt.Fprintln(out, "===========================")

	f.Initialize(ctx)
	options := f.Options()
	if len(options) == 0 {
		fmt.Fprintln(out, "No se pudieron cargar los sabores; el pedido se enviará sin sabores.")
	}

	for {
		if err := fill(p, f, options); err != nil {
			return err
		}

		for {
			tableRange, err := f.Submit(ctx)
			if err == nil {
				fmt.Fprintf(out, "\n✅ Pedido registrado (%s)\n", tableRange)
				break
			}

			var validationErr *form.ValidationError
			if errors.As(err, &validationErr) {
				fmt.Fprintf(out, "\n❌ Faltan datos: %v\n", validationErr)
				if err := fill(p, f, options); err != nil {
					return err
				}
				continue
			}

			fmt.Fprintf(out, "\n❌ No se pudo enviar el pedido: %v\n", err)
			retry, err := p.confirm("¿Reintentar? (s/n): ")
			if err != nil {
				return err
			}
			if !retry {
				return nil
			}
		}

		again, err := p.confirm("\n¿Otro pedido? (s/n): ")
		if err != nil || !again {
			return err
		}
	}
}

// fill prompts for every field of the form
func fill(p *prompter, f *form.Form, options []form.Option) error {
	nombre, err := p.ask("Nombre: ")
	if err != nil {
		return err
	}
	f.SetNombre(nombre)

	medida, err := p.choose("Medida", models.Medidas)
	if err != nil {
		return err
	}
	f.SetMedida(medida)

	if len(options) > 0 {
		sabores, err := p.chooseFlavors(options)
		if err != nil {
			return err
		}
		f.SelectFlavors(sabores...)
	}

	celular, err := p.required("Celular: ")
	if err != nil {
		return err
	}
	f.SetCelular(celular)

	direccion, err := p.required("Dirección: ")
	if err != nil {
		return err
	}
	f.SetDireccion(direccion)

	medioPago, err := p.choose("Medio de pago", models.MediosPago)
	if err != nil {
		return err
	}
	f.SetMedioPago(medioPago)

	message, err := p.ask("Mensaje (opcional): ")
	if err != nil {
		return err
	}
	f.SetMessage(message)

	return nil
}

type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *prompter) required(label string) (string, error) {
	for {
		value, err := p.ask(label)
		if err != nil || value != "" {
			return value, err
		}
		fmt.Fprintln(p.out, "Este campo es obligatorio.")
	}
}

func (p *prompter) confirm(label string) (bool, error) {
	answer, err := p.ask(label)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "s" || answer == "si" || answer == "sí", nil
}

// choose lists values and returns the one picked by number
func (p *prompter) choose(label string, values []string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", label)
	for i, v := range values {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, v)
	}

	for {
		answer, err := p.ask(fmt.Sprintf("Elegí (1-%d): ", len(values)))
		if err != nil {
			return "", err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(values) {
			return values[n-1], nil
		}
		fmt.Fprintln(p.out, "Opción inválida.")
	}
}

// chooseFlavors reads a comma-separated list of option numbers.
// Numbers past the limit are dropped by the form itself.
func (p *prompter) chooseFlavors(options []form.Option) ([]string, error) {
	fmt.Fprintf(p.out, "Sabores (hasta %d):\n", models.MaxFlavors)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, o.Label)
	}

	for {
		answer, err := p.ask("Números separados por coma (vacío para ninguno): ")
		if err != nil {
			return nil, err
		}
		values, ok := parseSelection(answer, options)
		if ok {
			if len(values) > models.MaxFlavors {
				fmt.Fprintf(p.out, "Se toman solo los primeros %d sabores.\n", models.MaxFlavors)
			}
			return values, nil
		}
		fmt.Fprintln(p.out, "Selección inválida.")
	}
}

func parseSelection(answer string, options []form.Option) ([]string, bool) {
	var values []string
	seen := make(map[int]bool)
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(options) {
			return nil, false
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		values = append(values, options[n-1].Value)
	}
	return values, true
}
