// Package launch runs the bot inside the activated virtual environment.
//
// The Launcher checks preconditions (venv present, entrypoint present),
// assembles the child environment (venv activation plus dotenv variables
// that are not already set), and executes the entrypoint synchronously
// with the terminal streams attached. The bot's real exit code is
// returned to the caller and propagated as the CLI's own exit code.
package launch
