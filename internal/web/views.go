package web

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

func JoinView(code, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Join &middot; Card Clash</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell narrow">
      <header class="hero">
        <span class="tag">Card Clash</span>
        <h1>Join a room</h1>
      </header>
      <section class="panel">
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Join code" autocomplete="off" value="`+templ.EscapeString(code)+`" required/>
          <input name="name" placeholder="Your name" autocomplete="name" value="`+templ.EscapeString(name)+`" required/>
          <button type="submit" class="primary">Join room</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>
    </main>
    <script>
      const joinForm = document.getElementById("joinForm");
      const joinResult = document.getElementById("joinResult");
      joinForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        joinResult.textContent = "Joining room...";
        const code = joinForm.elements.code.value.trim();
        const name = joinForm.elements.name.value.trim();
        const res = await fetch("/api/rooms/" + encodeURIComponent(code) + "/join", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          joinResult.textContent = data.error || "Failed to join room.";
          return;
        }
        window.location = "/play/" + data.room_id + "/" + data.player_id;
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}

// RoomView is the shared host screen. All game state arrives over the room
// websocket; the page itself only knows its room.
func RoomView(roomID, joinCode string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Room `+templ.EscapeString(joinCode)+` &middot; Card Clash</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body data-room-id="`+templ.EscapeString(roomID)+`">
    <main class="shell wide">
      <header class="hero row">
        <div>
          <span class="tag">Card Clash</span>
          <h1>Join code: <span id="joinCode">`+templ.EscapeString(joinCode)+`</span></h1>
          <p id="statusLine">Waiting for players...</p>
        </div>
        <img id="qr" alt="Join QR code" src="/api/rooms/`+templ.EscapeString(roomID)+`/qr"/>
      </header>

      <section class="panel">
        <h2 id="promptLine"></h2>
        <p id="deadlineLine" class="muted"></p>
        <div id="stage" class="stage"></div>
      </section>

      <section class="panel">
        <h2>Players</h2>
        <ul id="playerList" class="room-list"></ul>
      </section>
    </main>

    <script>
      const roomID = document.body.dataset.roomId;
      const statusLine = document.getElementById("statusLine");
      const promptLine = document.getElementById("promptLine");
      const deadlineLine = document.getElementById("deadlineLine");
      const stage = document.getElementById("stage");
      const playerList = document.getElementById("playerList");
      let deadline = null;

      function render(snap) {
        statusLine.textContent = snap.status === "waiting"
          ? "Waiting for players..."
          : snap.status === "finished"
            ? "Game over!"
            : "Round " + snap.current_round + " of " + snap.max_rounds;
        playerList.innerHTML = "";
        for (const p of snap.players || []) {
          const item = document.createElement("li");
          item.textContent = p.name + " — " + p.score + (p.connected ? "" : " (away)");
          playerList.appendChild(item);
        }
        stage.innerHTML = "";
        promptLine.textContent = "";
        deadline = null;
        const round = snap.round;
        if (round) {
          promptLine.textContent = round.prompt;
          deadline = new Date(round.deadline);
          if (round.status === "playing") {
            const waiting = (snap.players || []).filter(
              (p) => !(round.submitted_player_ids || []).includes(p.player_id)
            );
            stage.textContent = waiting.length
              ? "Waiting on: " + waiting.map((p) => p.name).join(", ")
              : "Everyone is in!";
          } else {
            for (const sub of round.submissions || []) {
              const card = document.createElement("div");
              card.className = "submission";
              const won = (round.winner_ids || []).includes(sub.player_id);
              card.textContent = sub.cards.join(" + ") +
                (round.status === "ended" ? " — " + sub.player_name + (won ? " *" : "") : "");
              stage.appendChild(card);
            }
          }
        }
        if (snap.results) {
          const board = document.createElement("ol");
          for (const row of snap.results.standings || []) {
            const item = document.createElement("li");
            item.textContent = row.name + " — " + row.score;
            board.appendChild(item);
          }
          stage.appendChild(board);
        }
      }

      setInterval(() => {
        if (!deadline) {
          deadlineLine.textContent = "";
          return;
        }
        const left = Math.max(0, Math.round((deadline - Date.now()) / 1000));
        deadlineLine.textContent = left + "s";
        if (left === 0) {
          fetch("/api/rooms/" + roomID + "/advance", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: "{}"
          });
          deadline = null;
        }
      }, 1000);

      const proto = window.location.protocol === "https:" ? "wss" : "ws";
      const socket = new WebSocket(proto + "://" + window.location.host + "/ws/rooms/" + roomID);
      socket.onmessage = (event) => render(JSON.parse(event.data));
    </script>
  </body>
</html>
`)
		return nil
	})
}

// PlayerView is the phone screen: the player's hand, card picking and
// voting.
func PlayerView(roomID string, playerID int, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pid := strconv.Itoa(playerID)
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Play &middot; Card Clash</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body data-room-id="`+templ.EscapeString(roomID)+`" data-player-id="`+pid+`">
    <main class="shell narrow">
      <header class="hero">
        <span class="tag">Card Clash</span>
        <h1>`+templ.EscapeString(name)+`</h1>
        <p id="statusLine"></p>
      </header>
      <section class="panel">
        <h2 id="promptLine"></h2>
        <div id="actions"></div>
        <div id="result" class="result"></div>
      </section>
    </main>

    <script>
      const roomID = document.body.dataset.roomId;
      const playerID = Number(document.body.dataset.playerId);
      const statusLine = document.getElementById("statusLine");
      const promptLine = document.getElementById("promptLine");
      const actions = document.getElementById("actions");
      const result = document.getElementById("result");
      let snap = null;
      let picked = [];

      async function loadHand(roundNumber) {
        const res = await fetch(
          "/api/rooms/" + roomID + "/players/" + playerID + "/hand?round=" + roundNumber
        );
        if (!res.ok) return null;
        return res.json();
      }

      async function post(action, body) {
        const res = await fetch("/api/rooms/" + roomID + "/" + action, {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(body)
        });
        const data = await res.json();
        if (!res.ok) {
          result.textContent = data.error || "Something went wrong.";
        } else {
          result.textContent = "";
        }
        return res.ok;
      }

      async function render() {
        if (!snap) return;
        actions.innerHTML = "";
        promptLine.textContent = "";
        const round = snap.round;
        if (snap.status === "waiting") {
          statusLine.textContent = "Waiting for the host to start...";
          if (snap.host_id === playerID) {
            const btn = document.createElement("button");
            btn.className = "primary";
            btn.textContent = "Start game";
            btn.onclick = () => post("start", { player_id: playerID });
            actions.appendChild(btn);
          }
          return;
        }
        if (snap.status === "finished") {
          statusLine.textContent = "Game over!";
          return;
        }
        if (!round) return;
        statusLine.textContent = "Round " + round.number + " of " + snap.max_rounds;
        promptLine.textContent = round.prompt;
        if (round.status === "playing") {
          if ((round.submitted_player_ids || []).includes(playerID)) {
            actions.textContent = "Cards in. Waiting for the others...";
            return;
          }
          const hand = await loadHand(round.number);
          if (!hand) return;
          picked = [];
          for (const card of hand.cards) {
            const btn = document.createElement("button");
            btn.className = "card";
            btn.textContent = card.text;
            btn.onclick = async () => {
              btn.disabled = true;
              picked.push(card.card_id);
              if (picked.length === 2) {
                await post("submissions", {
                  player_id: playerID,
                  round_id: hand.round_id,
                  card_ids: picked
                });
              }
            };
            actions.appendChild(btn);
          }
        } else if (round.status === "voting") {
          if ((round.voted_player_ids || []).includes(playerID)) {
            actions.textContent = "Vote in. Waiting for the others...";
            return;
          }
          for (const sub of round.submissions || []) {
            if (sub.player_id === playerID) continue;
            const btn = document.createElement("button");
            btn.className = "card";
            btn.textContent = sub.cards.join(" + ");
            btn.onclick = () => post("votes", {
              player_id: playerID,
              round_id: round.round_id,
              voted_for_id: sub.player_id
            });
            actions.appendChild(btn);
          }
        } else {
          actions.textContent = "Next round coming up...";
        }
      }

      const proto = window.location.protocol === "https:" ? "wss" : "ws";
      const socket = new WebSocket(
        proto + "://" + window.location.host + "/ws/rooms/" + roomID + "?player_id=" + playerID
      );
      socket.onmessage = (event) => {
        snap = JSON.parse(event.data);
        render();
      };
    </script>
  </body>
</html>
`)
		return nil
	})
}
