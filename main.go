package main

import "github.com/stealthomikey/caloriequest/cmd/cq"

func main() {
	cq.Execute()
}
