package main

import "recogstats/internal/app"

func main() {
	app.Main()
}
