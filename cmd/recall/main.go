// Command recall manages a spaced-repetition review tree from the terminal.
package main

func main() {
	Execute()
}
