package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func printInfo(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", color.CyanString("ℹ"), fmt.Sprintf(format, a...))
}

func printSuccess(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...interface{}) {
	fmt.Printf("%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, a...))
}

func printError(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("✗"), fmt.Sprintf(format, a...))
}
