package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// runProviderEnable enables a provider.
func runProviderEnable(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load or create provider lock.
	lock, lockPath := loadOrCreateProviderLock()

	if verbose {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n", lockPath)
	}

	// Handle "all" pseudo-provider.
	if providerName == providerNameAll {
		if providerClearOnly {
			// Just remove "all" from the disabled list.
			lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerNameAll)
		} else {
			// Clear disabled list.
			lock.DisabledProviders = []string{}
			// Add "all" to enabled list.
			lock.EnabledProviders = []string{providerNameAll}
		}

		if err := saveProviderLock(lockPath, lock); err != nil {
			return fmt.Errorf("failed to save provider lock: %w", err)
		}

		if providerClearOnly {
			fmt.Println("Cleared 'all' from disabled list")
		} else {
			fmt.Println("All providers enabled")
		}
		return nil
	}

	if providerClearOnly {
		// Just remove from the disabled list.
		lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerName)
	} else {
		// Remove from disabled list.
		lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerName)

		// Add to enabled list if not already there.
		if !containsProvider(lock.EnabledProviders, providerName) {
			lock.EnabledProviders = append(lock.EnabledProviders, providerName)
		}
	}

	// Save lock file.
	if err := saveProviderLock(lockPath, lock); err != nil {
		return fmt.Errorf("failed to save provider lock: %w", err)
	}

	if providerClearOnly {
		fmt.Printf("Cleared '%s' from disabled list\n", providerName)
	} else {
		fmt.Printf("Provider '%s' enabled\n", providerName)
	}
	return nil
}

// runProviderDisable disables a provider.
func runProviderDisable(cmd *cobra.Command, args []string) error {
	providerName := args[0]
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load or create provider lock.
	lock, lockPath := loadOrCreateProviderLock()

	if verbose {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n", lockPath)
	}

	// Handle "all" pseudo-provider.
	if providerName == providerNameAll {
		if providerClearOnly {
			// Just remove "all" from the enabled list.
			lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerNameAll)
		} else {
			// Clear enabled list.
			lock.EnabledProviders = []string{}
			// Add "all" to disabled list.
			lock.DisabledProviders = []string{providerNameAll}
		}

		if err := saveProviderLock(lockPath, lock); err != nil {
			return fmt.Errorf("failed to save provider lock: %w", err)
		}

		if providerClearOnly {
			fmt.Println("Cleared 'all' from enabled list")
		} else {
			fmt.Println("All providers disabled")
		}
		return nil
	}

	if providerClearOnly {
		// Just remove from the enabled list.
		lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerName)
	} else {
		// Remove from enabled list.
		lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerName)

		// Add to disabled list if not already there.
		if !containsProvider(lock.DisabledProviders, providerName) {
			lock.DisabledProviders = append(lock.DisabledProviders, providerName)
		}
	}

	// Save lock file.
	if err := saveProviderLock(lockPath, lock); err != nil {
		return fmt.Errorf("failed to save provider lock: %w", err)
	}

	if providerClearOnly {
		fmt.Printf("Cleared '%s' from enabled list\n", providerName)
	} else {
		fmt.Printf("Provider '%s' disabled\n", providerName)
	}
	return nil
}

// runProviderClear clears provider configuration.
func runProviderClear(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	// Load or create provider lock.
	lock, lockPath := loadOrCreateProviderLock()

	if verbose {
		fmt.Fprintf(os.Stderr, "Using lock file: %s\n", lockPath)
	}

	// If no provider name provided, clear all configuration.
	if len(args) == 0 {
		lock.EnabledProviders = []string{}
		lock.DisabledProviders = []string{}

		if err := saveProviderLock(lockPath, lock); err != nil {
			return fmt.Errorf("failed to save provider lock: %w", err)
		}

		fmt.Println("Cleared all provider configuration")
		return nil
	}

	providerName := args[0]

	// Handle "all" pseudo-provider.
	if providerName == providerNameAll {
		lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerNameAll)
		lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerNameAll)

		if err := saveProviderLock(lockPath, lock); err != nil {
			return fmt.Errorf("failed to save provider lock: %w", err)
		}

		fmt.Println("Cleared 'all' configuration")
		return nil
	}

	// Remove from both lists.
	lock.EnabledProviders = removeFromList(lock.EnabledProviders, providerName)
	lock.DisabledProviders = removeFromList(lock.DisabledProviders, providerName)

	// Save lock file.
	if err := saveProviderLock(lockPath, lock); err != nil {
		return fmt.Errorf("failed to save provider lock: %w", err)
	}

	fmt.Printf("Cleared configuration for '%s'\n", providerName)
	return nil
}

// containsProvider checks if a provider is in a list.
func containsProvider(list []string, name string) bool {
	return slices.Contains(list, name)
}

// removeFromList removes a provider from a list.
func removeFromList(list []string, name string) []string {
	result := make([]string, 0, len(list))
	for _, item := range list {
		if item != name {
			result = append(result, item)
		}
	}
	return result
}
