/*
Package keybinds maps key strings to actions per UI context.

Lookups try the specific context first and fall back to global. Users
override defaults with ~/.insightcli/keybinds.json:

	{
	  "editor": {
	    "ctrl+enter": "submit",
	    "ctrl+y": "none"
	  },
	  "history": {
	    "x": "delete_entry"
	  }
	}

Binding a key to "none" removes it in that context.
*/
package keybinds
