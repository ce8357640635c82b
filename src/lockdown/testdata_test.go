package lockdown

import (
	"os"
	"path/filepath"
	"testing"
)

const validManifest = `{
  "name": "example",
  "version": "1.0.0",
  "dependencies": {
    "react": "15.3.2",
    "react-native": "0.34.1"
  },
  "devDependencies": {
    "jest": "16.0.1",
    "lodash": "git+https://github.com/lodash/lodash.git#4.17.2",
    "local-lib": "file:../local-lib"
  }
}
`

const invalidManifest = `{
  "name": "example",
  "version": "1.0.0",
  "dependencies": {
    "react": "15.3.2",
    "react-native": "0.34.1",
    "lodash": "git+https://github.com/lodash/lodash.git#4.17.2"
  },
  "devDependencies": {
    "@kadira/react-native-storybook": "^2.1.3",
    "babel-jest": ">=15.0.0",
    "babel-plugin-flow-react-proptypes": "<0.12.2",
    "babel-preset-react-native": "~1.9.0",
    "eslint-config-airbnb-flow": "1.0.x",
    "eslint-plugin-import": "",
    "eslint-plugin-jsx-a11y": "*",
    "jest": "16.0.1"
  }
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
