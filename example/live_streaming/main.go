// Command live_streaming serves a quiz batch over a WebSocket preview page.
// The browser asks for an item and phase, the server synthesizes the clip
// and sends it back as a base64 WAV for immediate playback.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/speech"
	"github.com/quizvoice/quizvoice/wav"
)

var addr = flag.String("addr", "localhost:8080", "http service address")
var quizFile = flag.String("quiz", "testdata/sample_quiz.json", "Quiz batch file to serve")
var modelName = flag.String("model", speech.DefaultModel, "Model name to use")
var voiceName = flag.String("voice", speech.DefaultVoice, "Voice for synthesized audio")
var apiKey = flag.String("api-key", "", "API key for the Gemini API")
var useMock = flag.Bool("mock", false, "Use the offline mock synthesizer")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Define message structure for WebSocket communication
type message struct {
	Item  int    `json:"item"`
	Phase string `json:"phase"`
}

// Define response structure for WebSocket communication
type response struct {
	Text  string `json:"text"`
	Audio string `json:"audio,omitempty"`
	Error string `json:"error,omitempty"`
}

var batch *quiz.Batch

func main() {
	flag.Parse()
	log.SetFlags(0)

	var err error
	batch, err = quiz.Load(*quizFile)
	if err != nil {
		log.Fatalf("Failed to load quiz: %v", err)
	}
	log.Printf("Serving %d quiz items from %s", len(batch.Items), *quizFile)

	// Set up HTTP handlers
	http.HandleFunc("/", homeHandler)
	http.HandleFunc("/live", liveHandler)

	// Start HTTP server
	log.Printf("Server listening on http://%s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

// Handle WebSocket connections for clip synthesis
func liveHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade error:", err)
		return
	}
	defer c.Close()

	ctx := context.Background()

	log.Printf("WebSocket connection established")

	// Message handling loop
	for {
		// Read message from WebSocket
		messageType, messageData, err := c.ReadMessage()
		if err != nil {
			log.Println("read error:", err)
			break
		}

		// Only process text messages
		if messageType != websocket.TextMessage {
			continue
		}

		// Parse message JSON
		var msg message
		if err := json.Unmarshal(messageData, &msg); err != nil {
			log.Println("unmarshal error:", err)
			continue
		}

		// Synthesize the requested clip
		resp := processClipRequest(ctx, msg)

		// Send response back to WebSocket client
		respBytes, err := json.Marshal(resp)
		if err != nil {
			log.Println("marshal error:", err)
			continue
		}

		if err := c.WriteMessage(websocket.TextMessage, respBytes); err != nil {
			log.Println("write error:", err)
			break
		}
	}
}

// processClipRequest synthesizes one phase of one quiz item.
func processClipRequest(ctx context.Context, msg message) response {
	if msg.Item < 0 || msg.Item >= len(batch.Items) {
		return response{Error: fmt.Sprintf("item %d out of range", msg.Item)}
	}
	item := batch.Items[msg.Item]

	var text string
	switch msg.Phase {
	case "question":
		text = item.QuestionSpeech()
	case "answer":
		text = item.AnswerSpeech()
	case "detail":
		text = item.DetailSpeech()
	default:
		return response{Error: fmt.Sprintf("unknown phase %q", msg.Phase)}
	}
	if text == "" {
		return response{Error: fmt.Sprintf("item %d has no %s text", msg.Item+1, msg.Phase)}
	}

	synth, cleanup, err := newSynthesizer(ctx)
	if err != nil {
		return response{Text: text, Error: err.Error()}
	}
	defer cleanup()

	audio, err := synth.Synthesize(ctx, text)
	if err != nil {
		return response{Text: text, Error: err.Error()}
	}

	encoded := base64.StdEncoding.EncodeToString(wav.Encode(audio.Format, audio.PCM))
	return response{Text: text, Audio: encoded}
}

// newSynthesizer builds the speech backend the same way the TUI does:
// mock when requested, live for live-capable models, gRPC otherwise.
func newSynthesizer(ctx context.Context) (speech.Synthesizer, func(), error) {
	if *useMock {
		return &speech.Mock{}, func() {}, nil
	}

	apiKeyValue := speech.ResolveAPIKey(*apiKey)
	if apiKeyValue == "" {
		return nil, nil, fmt.Errorf("API key is required unless -mock is set")
	}

	if speech.IsLiveModel(*modelName) {
		client, err := speech.NewLiveClient(ctx, apiKeyValue, *modelName, *voiceName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create live client: %v", err)
		}
		return client, func() { client.Close() }, nil
	}

	client := &speech.Client{APIKey: apiKeyValue, Model: *modelName}
	if err := client.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to create speech client: %v", err)
	}
	return client, func() { client.Close() }, nil
}

// HTML template for the web UI
var homeTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>quizvoice Preview</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
            line-height: 1.6;
        }
        .item {
            margin-bottom: 10px;
            padding: 10px;
            border: 1px solid #ddd;
            border-radius: 5px;
        }
        .question {
            font-weight: bold;
        }
        #status {
            margin-top: 20px;
            padding: 10px;
            border-radius: 5px;
            background-color: #f0f0f0;
            min-height: 1.5em;
        }
        .error {
            color: red;
            font-style: italic;
        }
        h1 {
            color: #333;
        }
        button {
            margin-left: 5px;
            padding: 5px 10px;
            background-color: #4CAF50;
            color: white;
            border: none;
            border-radius: 5px;
            cursor: pointer;
        }
        button:hover {
            background-color: #45a049;
        }
        button:disabled {
            background-color: #ccc;
        }
    </style>
</head>
<body>
    <h1>quizvoice Preview{{if .Title}} - {{.Title}}{{end}}</h1>
    {{range .Items}}
    <div class="item">
        <span class="question">{{.Number}}. {{.Question}}</span>
        <span>
            <button onclick="play({{.Index}}, 'question')">Question</button>
            <button onclick="play({{.Index}}, 'answer')">Answer</button>
            <button onclick="play({{.Index}}, 'detail')">Detail</button>
        </span>
    </div>
    {{end}}
    <div id="status"></div>

    <script>
        const wsURL = "{{.WSURL}}";
        const statusBox = document.getElementById('status');
        let ws;

        function connect() {
            ws = new WebSocket(wsURL);

            ws.onopen = function() {
                console.log('Connected to server');
                setStatus('Connected. Pick a clip to play.');
            };

            ws.onmessage = function(event) {
                const response = JSON.parse(event.data);
                if (response.error) {
                    setError(response.error);
                } else {
                    new Audio('data:audio/wav;base64,' + response.audio).play();
                    setStatus('Playing: ' + response.text);
                }
            };

            ws.onclose = function() {
                console.log('Disconnected from server');
                setStatus('Disconnected. Reconnecting...');
                // Try to reconnect after 2 seconds
                setTimeout(connect, 2000);
            };

            ws.onerror = function(error) {
                console.error('WebSocket error:', error);
                setError('Connection error. See console for details.');
            };
        }

        function play(item, phase) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                setStatus('Synthesizing...');
                ws.send(JSON.stringify({ item: item, phase: phase }));
            }
        }

        function setStatus(text) {
            statusBox.textContent = text;
            statusBox.className = '';
        }

        function setError(text) {
            statusBox.textContent = 'Error: ' + text;
            statusBox.className = 'error';
        }

        // Initialize connection
        connect();
    </script>
</body>
</html>
`))

type pageItem struct {
	Index    int
	Number   int
	Question string
}

type pageData struct {
	WSURL string
	Title string
	Items []pageItem
}

// Render the home page
func homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Determine WebSocket protocol based on HTTP request
	wsProtocol := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		wsProtocol = "wss"
	}

	data := pageData{
		WSURL: fmt.Sprintf("%s://%s/live", wsProtocol, r.Host),
		Title: batch.Title,
	}
	for i, item := range batch.Items {
		data.Items = append(data.Items, pageItem{Index: i, Number: i + 1, Question: item.Question.Display})
	}
	homeTemplate.Execute(w, data)
}
