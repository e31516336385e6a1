// Command bwho runs the admin player lookup command against a roster
// snapshot and admin files, either once or from an interactive console.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
