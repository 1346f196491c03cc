package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/RAYMONDNJOROGE/mpesa/internal/submit"
)

// consolePresenter renders submission views on the terminal.
type consolePresenter struct{}

func (consolePresenter) Present(v submit.View) {
	if v.Message == "" {
		return
	}
	switch v.Category {
	case submit.CategorySuccess:
		fmt.Printf("[ok] %s\n", v.Message)
	case submit.CategoryFailure:
		fmt.Printf("[error] %s\n", v.Message)
	default:
		fmt.Printf("[..] %s\n", v.Message)
	}
}

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/api/stkpush", "payment-initiation endpoint")
	phone := flag.String("phone", "", "phone number (2547XXXXXXXX); prompted for when empty")
	amount := flag.String("amount", "", "amount in KSH; prompted for when empty")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)

	rawPhone := *phone
	if rawPhone == "" {
		rawPhone = prompt(reader, "Phone number (2547XXXXXXXX): ")
	}

	rawAmount := *amount
	if rawAmount == "" {
		rawAmount = prompt(reader, "Amount (KSH): ")
	}

	controller := submit.NewController(*endpoint, consolePresenter{})

	outcome, err := controller.Submit(context.Background(), rawPhone, rawAmount)
	if err != nil {
		// Validation failures were already presented; anything else is
		// unexpected here.
		var verr *submit.ValidationError
		if !errors.As(err, &verr) {
			log.Printf("submission error: %v", err)
		}
		os.Exit(1)
	}

	if !outcome.Success {
		os.Exit(1)
	}
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
