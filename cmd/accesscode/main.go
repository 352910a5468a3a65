package main

import (
	"fmt"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/prepforge/mockexam-backend/internal/config"
)

// Generates the bcrypt hash for ACCESS_CODE_HASH. The code is read without
// echo so it never lands in shell history or terminal scrollback.
func main() {
	cfg := config.Load()

	fmt.Println("=== Generate Access Code Hash ===")
	fmt.Print("Enter Access Code: ")
	byteCode, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading access code")
		return
	}
	code := string(byteCode)
	fmt.Println()
	if len(code) < 4 {
		fmt.Println("Error: Access code must be at least 4 characters")
		return
	}

	fmt.Print("Confirm Access Code: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading confirmation")
		return
	}
	fmt.Println()
	if code != string(byteConfirm) {
		fmt.Println("Error: Access codes do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), cfg.BcryptCost)
	if err != nil {
		fmt.Printf("Error: hashing failed: %v\n", err)
		return
	}

	fmt.Println("\nAdd this to your environment:")
	fmt.Printf("ACCESS_CODE_HASH='%s'\n", hash)
}
